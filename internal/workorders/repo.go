package workorders

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
)

// Repository manages the locally cached work orders.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Upsert inserts the work order or refreshes the cached copy when the
// work order number already exists.
func (r *Repository) Upsert(ctx context.Context, order *models.WorkOrder) error {
	if order == nil {
		return errors.New("work order is required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "work_order_no"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mcpl_part_code",
				"customer_part_code",
				"customer_name",
				"total_quantity",
				"mfg_process_name",
				"raw_json_data",
				"location",
				"wire_type",
				"gauge",
				"main_color",
				"bi_color",
				"work_order_date",
				"last_fetched_at",
			}),
		}).
		Create(order).Error
}

// FindByNumber returns the work order with the exact number, or nil.
func (r *Repository) FindByNumber(ctx context.Context, workOrderNo string) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := r.db.WithContext(ctx).
		Where("work_order_no = ?", workOrderNo).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns the cached orders, most recently fetched first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.WorkOrder, error) {
	if limit <= 0 {
		limit = 200
	}
	var orders []models.WorkOrder
	if err := r.db.WithContext(ctx).
		Order("last_fetched_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
