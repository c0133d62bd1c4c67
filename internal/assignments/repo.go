package assignments

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
)

// Repository handles machine assignment reads and operator updates.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to assignment operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Resolve answers "is this machine currently printing, and for which order?".
// It returns nil uniformly for an unknown machine, a machine with no bound
// order, and a machine whose printing is paused; the pipeline treats all
// three the same way.
func (r *Repository) Resolve(ctx context.Context, machineID int) (*models.MachineAssignment, error) {
	var assignment models.MachineAssignment
	err := r.db.WithContext(ctx).
		Preload("WorkOrder").
		Where("machine_id = ?", machineID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !assignment.IsPrintingActive || assignment.WorkOrder == nil {
		return nil, nil
	}
	return &assignment, nil
}

// List returns every machine with its bound order, ordered by machine id.
func (r *Repository) List(ctx context.Context) ([]models.MachineAssignment, error) {
	var assignments []models.MachineAssignment
	if err := r.db.WithContext(ctx).
		Preload("WorkOrder").
		Order("machine_id").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// Update binds a work order to a machine and sets its printing flag. A nil
// workOrderID clears the binding. Machine rows are pre-seeded and never
// created here.
func (r *Repository) Update(ctx context.Context, machineID int, workOrderID *uint, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MachineAssignment{}).
		Where("machine_id = ?", machineID).
		Updates(map[string]any{
			"assigned_work_order_id": workOrderID,
			"is_printing_active":     active,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
