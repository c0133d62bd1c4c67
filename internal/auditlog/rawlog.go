package auditlog

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

// RawLogRepository records every inbound message verbatim. Writes are
// best-effort: a failure here must never stall the print pipeline.
type RawLogRepository struct {
	db   *gorm.DB
	logg *logger.Logger
}

func NewRawLogRepository(db *gorm.DB, logg *logger.Logger) *RawLogRepository {
	return &RawLogRepository{db: db, logg: logg}
}

// Append stores one raw message. Errors are logged and swallowed.
func (r *RawLogRepository) Append(ctx context.Context, topic string, payload []byte) {
	event := models.RawEvent{
		ReceivedAt: time.Now().UTC(),
		Topic:      topic,
		Payload:    string(payload),
	}
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		r.logg.Warn(r.logg.WithTopic(ctx, topic), "raw event log write failed: "+err.Error())
	}
}

// Recent returns the newest raw messages for the debugging view.
func (r *RawLogRepository) Recent(ctx context.Context, limit int) ([]models.RawEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []models.RawEvent
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
