package models

import "time"

// RawEvent is the unconditional append-only record of every inbound message,
// kept for replay and debugging independent of the print audit trail.
type RawEvent struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ReceivedAt time.Time `gorm:"column:received_at;not null"`
	Topic      string    `gorm:"column:topic;not null"`
	Payload    string    `gorm:"column:payload;not null"`
}

func (RawEvent) TableName() string { return "event_raw_log" }
