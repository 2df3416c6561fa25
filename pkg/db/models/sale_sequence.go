package models

import "time"

// SaleSequence holds the last issued sale number. There is exactly one row (id=1).
type SaleSequence struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	LastNumber int64     `gorm:"column:last_number;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (SaleSequence) TableName() string { return "sale_sequences" }
