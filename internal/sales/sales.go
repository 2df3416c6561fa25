// Package sales persists committed sales and answers history queries.
package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/pdv-backend/internal/cart"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
	"github.com/angelmondragon/pdv-backend/pkg/outbox/payloads"
)

var (
	ErrPersistFailed = errors.New("sale could not be saved")
	ErrSaleNotFound  = errors.New("sale not found")
	ErrInvalidSale   = errors.New("invalid sale")
	ErrNumberInUse   = errors.New("sale number already used by another sale")
)

// DefaultHistoryLimit caps ListRecent when the caller passes no limit.
const DefaultHistoryLimit = 20

// Summary is one row of an operator's sale history.
type Summary struct {
	SaleNumber       int64               `json:"saleNumber"`
	OperatorID       string              `json:"operatorId"`
	TerminalID       string              `json:"terminalId"`
	BuyerID          *string             `json:"buyerId,omitempty"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod"`
	Note             string              `json:"note,omitempty"`
	Total            money.Cents         `json:"totalCents"`
	ItemCount        int                 `json:"itemCount"`
	ReceiptRequested *bool               `json:"receiptRequested,omitempty"`
	CommittedAt      time.Time           `json:"committedAt"`
}

// Detail is a committed sale with its lines.
type Detail struct {
	Summary
	Lines []cart.Line `json:"lines"`
}

func validate(sale checkout.Sale) error {
	switch {
	case sale.Number <= 0:
		return fmt.Errorf("%w: sale number is required", ErrInvalidSale)
	case sale.OperatorID == "":
		return fmt.Errorf("%w: operator is required", ErrInvalidSale)
	case len(sale.Lines) == 0:
		return fmt.Errorf("%w: sale has no items", ErrInvalidSale)
	case !sale.PaymentMethod.IsValid():
		return fmt.Errorf("%w: payment method is required", ErrInvalidSale)
	}
	var sum money.Cents
	for _, line := range sale.Lines {
		sum += line.Total
	}
	if sum != sale.Total {
		return fmt.Errorf("%w: total does not match items", ErrInvalidSale)
	}
	return nil
}

// sameSale reports whether a stored sale is the one being committed again.
// Timestamps are compared at microsecond precision, the finest postgres keeps.
func sameSale(storedOperator, storedTerminal string, storedCreated time.Time, storedTotal money.Cents, sale checkout.Sale) bool {
	return storedOperator == sale.OperatorID &&
		storedTerminal == sale.TerminalID &&
		storedTotal == sale.Total &&
		storedCreated.UTC().Truncate(time.Microsecond).Equal(sale.CreatedAt.UTC().Truncate(time.Microsecond))
}

func numberInUse(sale checkout.Sale) error {
	return fmt.Errorf("%w: sale %d: %w", ErrPersistFailed, sale.Number, ErrNumberInUse)
}

func committedEvent(sale checkout.Sale, committedAt time.Time) payloads.SaleCommittedEvent {
	lines := make([]payloads.SaleLine, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		lines = append(lines, saleLine(line))
	}
	return payloads.SaleCommittedEvent{
		SaleNumber:    sale.Number,
		OperatorID:    sale.OperatorID,
		TerminalID:    sale.TerminalID,
		BuyerID:       sale.BuyerID,
		PaymentMethod: sale.PaymentMethod,
		Note:          sale.Note,
		TotalCents:    sale.Total,
		Lines:         lines,
		CreatedAt:     sale.CreatedAt,
		CommittedAt:   committedAt,
	}
}

func saleLine(line cart.Line) payloads.SaleLine {
	return payloads.SaleLine{
		ItemNumber:     line.Number,
		Barcode:        line.Code,
		Description:    line.Description,
		Unit:           line.Unit,
		UnitPriceCents: line.UnitPrice,
		Quantity:       line.Quantity,
		TotalCents:     line.Total,
	}
}
