package models

import "time"

// MachineAssignment is the current production binding for one machine.
// One row per physical machine, pre-seeded by migration, never deleted.
// The operator API is the only writer; the pipeline only reads.
type MachineAssignment struct {
	MachineID           int        `gorm:"column:machine_id;primaryKey"`
	EquipmentName       string     `gorm:"column:equipment_name;not null"`
	AssignedWorkOrderID *uint      `gorm:"column:assigned_work_order_id"`
	WorkOrder           *WorkOrder `gorm:"foreignKey:AssignedWorkOrderID"`
	IsPrintingActive    bool       `gorm:"column:is_printing_active;not null;default:false"`
	LastUpdatedAt       time.Time  `gorm:"column:last_updated_at;autoUpdateTime"`
}

func (MachineAssignment) TableName() string { return "machine_assignments" }
