package models

import "time"

// WorkOrder is a locally cached copy of a NetSuite work order. The order
// system owns these rows; the sync job upserts them and the pipeline only
// reads them.
type WorkOrder struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement"`
	WorkOrderNo      string    `gorm:"column:work_order_no;uniqueIndex;not null"`
	MCPLPartCode     string    `gorm:"column:mcpl_part_code"`
	CustomerPartCode string    `gorm:"column:customer_part_code"`
	CustomerName     string    `gorm:"column:customer_name"`
	TotalQuantity    string    `gorm:"column:total_quantity"`
	MfgProcessName   string    `gorm:"column:mfg_process_name"`
	RawJSON          string    `gorm:"column:raw_json_data;not null"`
	Location         string    `gorm:"column:location"`
	WireType         string    `gorm:"column:wire_type"`
	Gauge            string    `gorm:"column:gauge"`
	MainColor        string    `gorm:"column:main_color"`
	BiColor          string    `gorm:"column:bi_color"`
	WorkOrderDate    string    `gorm:"column:work_order_date"`
	LastFetchedAt    time.Time `gorm:"column:last_fetched_at"`
}

func (WorkOrder) TableName() string { return "work_orders" }
