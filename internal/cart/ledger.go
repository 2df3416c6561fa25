// Package cart keeps the line items and running total of the sale being rung up.
package cart

import (
	"errors"

	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

var ErrLineNotFound = errors.New("line not found")

// Line is one catalog item entry of a sale.
type Line struct {
	Number      int               `json:"itemNumber"`
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Unit        enums.ProductUnit `json:"unit"`
	UnitPrice   money.Cents       `json:"unitPriceCents"`
	Quantity    int               `json:"quantity"`
	Total       money.Cents       `json:"totalCents"`
}

// Snapshot is a read-only copy of the ledger.
type Snapshot struct {
	Lines []Line      `json:"lines"`
	Total money.Cents `json:"totalCents"`
}

// Empty reports whether the snapshot has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Ledger is not safe for concurrent use; a terminal owns exactly one.
type Ledger struct {
	lines []Line
	total money.Cents
}

func New() *Ledger {
	return &Ledger{}
}

// Add increments the quantity of an existing line with the same code, keeping
// the price captured when the line was created, or appends a new line.
func (l *Ledger) Add(item catalog.Item) Line {
	if i := l.index(item.Code); i >= 0 {
		line := &l.lines[i]
		line.Quantity++
		line.Total += line.UnitPrice
		l.total += line.UnitPrice
		return *line
	}

	unit := item.Unit
	if unit == "" {
		unit = enums.DefaultProductUnit
	}
	line := Line{
		Number:      len(l.lines) + 1,
		Code:        item.Code,
		Description: item.Description,
		Unit:        unit,
		UnitPrice:   item.UnitPrice,
		Quantity:    1,
		Total:       item.UnitPrice,
	}
	l.lines = append(l.lines, line)
	l.total += line.Total
	return line
}

// DecrementOrRemove lowers the quantity by one, removing the line at one.
// The returned bool is false when the line was removed.
func (l *Ledger) DecrementOrRemove(code string) (Line, bool, error) {
	i := l.index(code)
	if i < 0 {
		return Line{}, false, ErrLineNotFound
	}
	line := &l.lines[i]
	if line.Quantity > 1 {
		line.Quantity--
		line.Total -= line.UnitPrice
		l.total -= line.UnitPrice
		return *line, true, nil
	}
	return l.removeAt(i), false, nil
}

// SetQuantity replaces the quantity of a line. n <= 0 removes it.
func (l *Ledger) SetQuantity(code string, n int) (Line, error) {
	i := l.index(code)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}
	if n <= 0 {
		return l.removeAt(i), nil
	}
	line := &l.lines[i]
	next := line.UnitPrice.Times(n)
	l.total += next - line.Total
	line.Quantity = n
	line.Total = next
	return *line, nil
}

// Void removes a line regardless of its quantity.
func (l *Ledger) Void(code string) (Line, error) {
	i := l.index(code)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}
	return l.removeAt(i), nil
}

// RemoveLast drops the most recently added line.
func (l *Ledger) RemoveLast() (Line, error) {
	if len(l.lines) == 0 {
		return Line{}, ErrLineNotFound
	}
	return l.removeAt(len(l.lines) - 1), nil
}

func (l *Ledger) Clear() {
	l.lines = nil
	l.total = 0
}

func (l *Ledger) Len() int {
	return len(l.lines)
}

func (l *Ledger) Total() money.Cents {
	return l.total
}

func (l *Ledger) Snapshot() Snapshot {
	lines := make([]Line, len(l.lines))
	copy(lines, l.lines)
	return Snapshot{Lines: lines, Total: l.total}
}

func (l *Ledger) index(code string) int {
	for i := range l.lines {
		if l.lines[i].Code == code {
			return i
		}
	}
	return -1
}

func (l *Ledger) removeAt(i int) Line {
	removed := l.lines[i]
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	l.total -= removed.Total
	l.renumber(i)
	return removed
}

func (l *Ledger) renumber(from int) {
	for i := from; i < len(l.lines); i++ {
		l.lines[i].Number = i + 1
	}
}
