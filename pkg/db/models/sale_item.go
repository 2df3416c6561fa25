package models

import "github.com/angelmondragon/pdv-backend/pkg/enums"

// SaleItem is one line of a committed sale with the price captured at scan time.
type SaleItem struct {
	ID             int64             `gorm:"column:id;primaryKey;autoIncrement"`
	SaleNumber     int64             `gorm:"column:sale_number;not null;uniqueIndex:ux_sale_items_sale_item,priority:1"`
	ItemNumber     int               `gorm:"column:item_number;not null;uniqueIndex:ux_sale_items_sale_item,priority:2"`
	Barcode        string            `gorm:"column:barcode;not null"`
	Description    string            `gorm:"column:description;not null"`
	Unit           enums.ProductUnit `gorm:"column:unit;not null"`
	UnitPriceCents int64             `gorm:"column:unit_price_cents;not null"`
	Quantity       int               `gorm:"column:quantity;not null"`
	TotalCents     int64             `gorm:"column:total_cents;not null"`
}

func (SaleItem) TableName() string { return "sale_items" }
