package auditlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	"github.com/mcpl-automation/coilprint-backend/pkg/enums"
)

// ErrDuplicateSerial signals an attempt to audit the same serial twice. The
// allocator makes serials unique by construction, so hitting this is a
// programming error, not something to retry.
var ErrDuplicateSerial = errors.New("duplicate serial number in print log")

// Repository persists the immutable per-event audit records.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to audit log operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts exactly one audit row. Rows are never updated or deleted.
func (r *Repository) Create(ctx context.Context, entry *models.PrintLog) error {
	if entry == nil {
		return errors.New("print log entry is required")
	}
	if !entry.Status.Valid() {
		return fmt.Errorf("invalid print status %q", entry.Status)
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if db.IsUniqueViolation(err, "serial_number") {
			return fmt.Errorf("%w: %s", ErrDuplicateSerial, entry.SerialNumber)
		}
		return err
	}
	return nil
}

// ProductionSummary aggregates the audit trail for one machine/order pairing.
type ProductionSummary struct {
	TotalCoilsProduced int             `json:"total_coils_produced"`
	TotalQuantityMade  decimal.Decimal `json:"total_quantity_made"`
	RecentSerialNumber string          `json:"recent_coil_serial_number"`
	RecentCoilQuantity decimal.Decimal `json:"recent_coil_quantity"`
	RecentPrintStatus  string          `json:"recent_print_status"`
	RecentErrorMessage string          `json:"recent_error_message"`
}

// Summary computes the production totals shown on the operator dashboard.
func (r *Repository) Summary(ctx context.Context, workOrderNo string, machineID int) (ProductionSummary, error) {
	summary := ProductionSummary{}
	if workOrderNo == "" {
		return summary, nil
	}

	var totals struct {
		TotalCoils int
		TotalQty   float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.PrintLog{}).
		Select("COUNT(*) AS total_coils, COALESCE(SUM(actual_length), 0) AS total_qty").
		Where("work_order_no = ? AND machine_id = ?", workOrderNo, machineID).
		Scan(&totals).Error
	if err != nil {
		return summary, err
	}
	summary.TotalCoilsProduced = totals.TotalCoils
	summary.TotalQuantityMade = decimal.NewFromFloat(totals.TotalQty).Round(2)

	var recent models.PrintLog
	err = r.db.WithContext(ctx).
		Where("work_order_no = ? AND machine_id = ?", workOrderNo, machineID).
		Order("print_timestamp DESC, id DESC").
		First(&recent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return summary, nil
	}
	if err != nil {
		return summary, err
	}

	summary.RecentSerialNumber = recent.SerialNumber
	summary.RecentCoilQuantity = decimal.NewFromFloat(recent.ActualLength).Round(2)
	summary.RecentPrintStatus = string(recent.Status)
	if recent.ErrorMessage != nil {
		summary.RecentErrorMessage = *recent.ErrorMessage
	}
	return summary, nil
}

// Recent returns the latest audit rows, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.PrintLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.PrintLog
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// RecentFailed returns the latest FAILED rows for the recovery view.
func (r *Repository) RecentFailed(ctx context.Context, limit int) ([]models.PrintLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.PrintLog
	if err := r.db.WithContext(ctx).
		Where("print_status = ?", enums.PrintStatusFailed).
		Order("print_timestamp DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LatestForMachine returns the most recent audit row for the machine, or nil.
func (r *Repository) LatestForMachine(ctx context.Context, machineID int) (*models.PrintLog, error) {
	var entry models.PrintLog
	err := r.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		Order("print_timestamp DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// BySerial returns the audit row with the exact serial number, or nil.
func (r *Repository) BySerial(ctx context.Context, serial string) (*models.PrintLog, error) {
	var entry models.PrintLog
	err := r.db.WithContext(ctx).
		Where("serial_number = ?", serial).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
