package pos

import (
	"errors"

	"github.com/angelmondragon/pdv-backend/internal/cart"
	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	"github.com/angelmondragon/pdv-backend/internal/sequencer"
)

// Errors surfaced by terminal commands. All of them are recoverable: the
// terminal is left in the last valid state.
var (
	ErrSequencerUnavailable = sequencer.ErrUnavailable
	ErrItemNotFound         = catalog.ErrItemNotFound
	ErrCatalogUnavailable   = catalog.ErrCatalogUnavailable
	ErrItemExists           = catalog.ErrItemExists
	ErrInvalidItem          = catalog.ErrInvalidItem
	ErrInvalidCommand       = checkout.ErrInvalidCommand
	ErrEmptyCart            = checkout.ErrEmptyCart
	ErrInvalidBuyerID       = checkout.ErrInvalidBuyerID
	ErrPersistFailed        = sales.ErrPersistFailed
	ErrNumberInUse          = sales.ErrNumberInUse
	ErrLineNotFound         = cart.ErrLineNotFound

	ErrTerminalClosed   = errors.New("terminal closed")
	ErrTerminalNotFound = errors.New("terminal not found")
	ErrTerminalInUse    = errors.New("terminal is assigned to another operator")
)
