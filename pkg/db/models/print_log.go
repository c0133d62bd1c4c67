package models

import (
	"time"

	"github.com/mcpl-automation/coilprint-backend/pkg/enums"
)

// PrintLog is the immutable audit record: exactly one row per
// assignment-active event, unique on serial number, never updated.
type PrintLog struct {
	ID           uint              `gorm:"column:id;primaryKey;autoIncrement"`
	SerialNumber string            `gorm:"column:serial_number;uniqueIndex;not null"`
	MachineID    int               `gorm:"column:machine_id;not null;index"`
	WorkOrderNo  string            `gorm:"column:work_order_no;not null;index"`
	ProductID    string            `gorm:"column:product_id;not null"`
	ActualLength float64           `gorm:"column:actual_length"`
	DefectType   string            `gorm:"column:defect_type"`
	EventPayload string            `gorm:"column:event_payload"`
	PrintedAt    time.Time         `gorm:"column:print_timestamp;autoCreateTime"`
	Status       enums.PrintStatus `gorm:"column:print_status;not null"`
	ErrorMessage *string           `gorm:"column:error_message"`
	ZPLContent   *string           `gorm:"column:zpl_content"`
}

func (PrintLog) TableName() string { return "print_log" }
