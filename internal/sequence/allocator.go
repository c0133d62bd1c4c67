package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
)

// ErrUnavailable signals that the counter row could not be read or advanced.
// An event without a sequence number must not be printed.
var ErrUnavailable = errors.New("serial sequence unavailable")

const dateLayout = "2006-01-02"

// Allocator hands out strictly increasing per-day sequence numbers backed by
// the serial_number_counter table.
type Allocator struct {
	runner TxRunner
}

// TxRunner executes fn inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NewAllocator binds the allocator to a transactional database client.
func NewAllocator(runner TxRunner) (*Allocator, error) {
	if runner == nil {
		return nil, errors.New("tx runner is required")
	}
	return &Allocator{runner: runner}, nil
}

// Next returns the next sequence number for the given day. The increment is a
// single atomic upsert so concurrent callers, even from separate processes,
// always receive a dense permutation of 1..N for the day. No application-level
// locking and no in-process caching: the counter row is the source of truth.
func (a *Allocator) Next(ctx context.Context, day time.Time) (int, error) {
	dateKey := day.Format(dateLayout)

	var seq int
	err := a.runner.WithTx(ctx, func(tx *gorm.DB) error {
		row := models.SerialCounter{CounterDate: dateKey, LastSequence: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "counter_date"}},
			DoUpdates: clause.Assignments(map[string]any{"last_sequence": gorm.Expr("last_sequence + 1")}),
		}).Create(&row).Error; err != nil {
			return err
		}

		var counter models.SerialCounter
		if err := tx.Where("counter_date = ?", dateKey).First(&counter).Error; err != nil {
			return err
		}
		seq = counter.LastSequence
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return seq, nil
}
