package models

// SerialCounter holds the last issued per-day label sequence. One row per
// calendar date, created implicitly on first allocation. The date is stored
// as YYYY-MM-DD text so the sqlite and postgres schemas behave identically.
type SerialCounter struct {
	CounterDate  string `gorm:"column:counter_date;primaryKey"`
	LastSequence int    `gorm:"column:last_sequence;not null"`
}

func (SerialCounter) TableName() string { return "serial_number_counter" }
