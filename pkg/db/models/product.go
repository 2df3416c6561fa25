package models

import (
	"time"

	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

// Product is a sellable catalog entry keyed by its barcode.
type Product struct {
	Barcode     string            `gorm:"column:barcode;primaryKey"`
	Description string            `gorm:"column:description;not null"`
	Unit        enums.ProductUnit `gorm:"column:unit;not null;default:'UN'"`
	PriceCents  int64             `gorm:"column:price_cents;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
