package models

import (
	"time"

	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

// Sale is a committed counter sale.
type Sale struct {
	SaleNumber       int64               `gorm:"column:sale_number;primaryKey;autoIncrement:false"`
	OperatorID       string              `gorm:"column:operator_id;not null;index:idx_sales_operator_committed,priority:1"`
	TerminalID       string              `gorm:"column:terminal_id;not null"`
	BuyerID          *string             `gorm:"column:buyer_id"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Note             string              `gorm:"column:note;not null;default:''"`
	TotalCents       int64               `gorm:"column:total_cents;not null"`
	ReceiptRequested *bool               `gorm:"column:receipt_requested"`
	CreatedAt        time.Time           `gorm:"column:created_at;not null"`
	CommittedAt      time.Time           `gorm:"column:committed_at;not null;index:idx_sales_operator_committed,priority:2"`
	Items            []SaleItem          `gorm:"foreignKey:SaleNumber;references:SaleNumber;constraint:OnDelete:CASCADE"`
}

func (Sale) TableName() string { return "sales" }
