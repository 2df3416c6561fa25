// Package catalog resolves scanned codes into sellable items.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/money"
)

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrItemExists         = errors.New("item already registered")
	ErrInvalidItem        = errors.New("invalid item")
)

// Item is the catalog view of a product at lookup time.
type Item struct {
	Code        string
	Description string
	Unit        enums.ProductUnit
	UnitPrice   money.Cents
}

// Resolver looks items up by code.
type Resolver interface {
	Lookup(ctx context.Context, code string) (Item, error)
}

// Registrar adds new items to the catalog.
type Registrar interface {
	Register(ctx context.Context, item Item) error
	Exists(ctx context.Context, code string) (bool, error)
}

// Catalog is the full surface used by terminals.
type Catalog interface {
	Resolver
	Registrar
}

// NormalizeCode trims surrounding whitespace from a scanned or typed code.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// Validate checks the fields required to register an item and fills the
// default unit when none is given.
func Validate(item Item) (Item, error) {
	item.Code = NormalizeCode(item.Code)
	item.Description = strings.TrimSpace(item.Description)
	if item.Code == "" {
		return Item{}, fmt.Errorf("%w: code is required", ErrInvalidItem)
	}
	if item.Description == "" {
		return Item{}, fmt.Errorf("%w: description is required", ErrInvalidItem)
	}
	if item.UnitPrice < 0 {
		return Item{}, fmt.Errorf("%w: unit price cannot be negative", ErrInvalidItem)
	}
	if item.Unit == "" {
		item.Unit = enums.DefaultProductUnit
	}
	if !item.Unit.IsValid() {
		return Item{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidItem, item.Unit)
	}
	return item, nil
}

// unavailable wraps a transport or store failure. Deadline errors stay
// visible through errors.Is so callers can report timeouts distinctly.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCatalogUnavailable, op, err)
}

// Seed registers items that are not in the catalog yet and returns how many
// were added.
func Seed(ctx context.Context, reg Registrar, items []Item) (int, error) {
	added := 0
	for _, item := range items {
		err := reg.Register(ctx, item)
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrItemExists):
		default:
			return added, fmt.Errorf("seed %s: %w", item.Code, err)
		}
	}
	return added, nil
}
