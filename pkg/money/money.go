// Package money holds BRL amounts as integer centavos so running totals never drift.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor units (1/100 of a real).
type Cents int64

var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrTooPrecise     = errors.New("amount has more than two decimal places")
)

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a decimal amount into cents, rejecting fractions of a centavo.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	scaled := d.Mul(hundred)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrTooPrecise, d.String())
	}
	return Cents(scaled.IntPart()), nil
}

// Parse reads a decimal string such as "4.50" into cents.
func Parse(value string) (Cents, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return FromDecimal(d)
}

// FromFloat is meant for catalog payloads that carry prices as JSON numbers.
// The value is rounded to the nearest centavo.
func FromFloat(f float64) (Cents, error) {
	return FromDecimal(decimal.NewFromFloat(f).Round(2))
}

// Times returns c multiplied by a line quantity.
func (c Cents) Times(qty int) Cents {
	return c * Cents(qty)
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount with two decimals, e.g. "8.20".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}
