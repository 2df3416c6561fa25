package responses

import (
	"context"
	"errors"

	"github.com/angelmondragon/pdv-backend/internal/pos"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	pkgerrors "github.com/angelmondragon/pdv-backend/pkg/errors"
)

// FromDomain maps terminal and store errors onto typed API errors. message
// overrides the public message when set.
func FromDomain(err error, message string) *pkgerrors.Error {
	code, fallback := classify(err)
	if typed := pkgerrors.As(err); typed != nil {
		if message == "" {
			return typed
		}
		code = typed.Code()
	}
	if message == "" {
		message = fallback
	}
	return pkgerrors.Wrap(code, err, message)
}

func classify(err error) (pkgerrors.Code, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.CodeTimeout, "dependency timed out"
	case errors.Is(err, pos.ErrTerminalNotFound):
		return pkgerrors.CodeNotFound, "terminal not open"
	case errors.Is(err, pos.ErrTerminalInUse):
		return pkgerrors.CodeConflict, "terminal is held by another operator"
	case errors.Is(err, pos.ErrTerminalClosed):
		return pkgerrors.CodeStateConflict, "terminal closed"
	case errors.Is(err, pos.ErrItemNotFound), errors.Is(err, pos.ErrLineNotFound), errors.Is(err, sales.ErrSaleNotFound):
		return pkgerrors.CodeNotFound, "resource not found"
	case errors.Is(err, pos.ErrItemExists):
		return pkgerrors.CodeConflict, "item already registered"
	case errors.Is(err, pos.ErrInvalidItem), errors.Is(err, pos.ErrInvalidBuyerID):
		return pkgerrors.CodeValidation, err.Error()
	case errors.Is(err, pos.ErrEmptyCart), errors.Is(err, pos.ErrInvalidCommand):
		return pkgerrors.CodeStateConflict, "command not allowed in current state"
	case errors.Is(err, pos.ErrPersistFailed):
		return pkgerrors.CodePersistence, "sale could not be saved"
	case errors.Is(err, pos.ErrCatalogUnavailable):
		return pkgerrors.CodeDependency, "catalog unavailable"
	case errors.Is(err, pos.ErrSequencerUnavailable):
		return pkgerrors.CodeDependency, "sale number unavailable"
	default:
		return pkgerrors.CodeInternal, "unexpected error"
	}
}
