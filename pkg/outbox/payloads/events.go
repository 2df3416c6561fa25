package payloads

import (
	"time"

	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

// SaleLine is one item of a committed sale.
type SaleLine struct {
	ItemNumber     int               `json:"item_number"`
	Barcode        string            `json:"barcode"`
	Description    string            `json:"description"`
	Unit           enums.ProductUnit `json:"unit"`
	UnitPriceCents money.Cents       `json:"unit_price_cents"`
	Quantity       int               `json:"quantity"`
	TotalCents     money.Cents       `json:"total_cents"`
}

// SaleCommittedEvent is emitted in the same transaction that stores a sale.
type SaleCommittedEvent struct {
	SaleNumber    int64               `json:"sale_number"`
	OperatorID    string              `json:"operator_id"`
	TerminalID    string              `json:"terminal_id,omitempty"`
	BuyerID       *string             `json:"buyer_id,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Note          string              `json:"note,omitempty"`
	TotalCents    money.Cents         `json:"total_cents"`
	Lines         []SaleLine          `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
	CommittedAt   time.Time           `json:"committed_at"`
}

// SaleReceiptChosenEvent records whether the customer asked for a receipt.
type SaleReceiptChosenEvent struct {
	SaleNumber int64     `json:"sale_number"`
	Requested  bool      `json:"requested"`
	ChosenAt   time.Time `json:"chosen_at"`
}
