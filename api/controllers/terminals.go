package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pdv-backend/api/middleware"
	"github.com/angelmondragon/pdv-backend/api/responses"
	"github.com/angelmondragon/pdv-backend/api/validators"
	"github.com/angelmondragon/pdv-backend/internal/pos"
	pkgerrors "github.com/angelmondragon/pdv-backend/pkg/errors"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
)

// TerminalRegistry hands out the terminal an operator works on.
type TerminalRegistry interface {
	Open(terminalID, operatorID string) (*pos.Terminal, error)
	Attached(terminalID, operatorID string) (*pos.Terminal, error)
	Release(terminalID, operatorID string) error
}

type terminalHandler func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error)

// terminalCommand resolves the caller's terminal, starting it on first use,
// and writes the command result. Rejected commands still carry the terminal
// view in the error details.
func terminalCommand(reg TerminalRegistry, logg *logger.Logger, status int, run terminalHandler) http.HandlerFunc {
	return terminalRoute(reg, logg, status, false, run)
}

// terminalQuery is terminalCommand for reads: a terminal that is not running
// yields 404 instead of being started.
func terminalQuery(reg TerminalRegistry, logg *logger.Logger, run terminalHandler) http.HandlerFunc {
	return terminalRoute(reg, logg, http.StatusOK, true, run)
}

func terminalRoute(reg TerminalRegistry, logg *logger.Logger, status int, attachedOnly bool, run terminalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "terminal registry unavailable"))
			return
		}
		term, ok := openTerminal(w, r, reg, logg, attachedOnly)
		if !ok {
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithTerminalID(ctx, term.ID())
		}

		res, err := run(ctx, r, term)
		if err != nil {
			if res.Notification == nil {
				responses.WriteError(ctx, logg, w, responses.FromDomain(err, ""))
				return
			}
			typed := responses.FromDomain(err, res.Notification.Message).WithDetails(res)
			responses.WriteError(ctx, logg, w, typed)
			return
		}
		responses.WriteSuccessStatus(w, status, res)
	}
}

func openTerminal(w http.ResponseWriter, r *http.Request, reg TerminalRegistry, logg *logger.Logger, attachedOnly bool) (*pos.Terminal, bool) {
	operatorID := middleware.OperatorIDFromContext(r.Context())
	if operatorID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator missing"))
		return nil, false
	}
	terminalID := strings.TrimSpace(chi.URLParam(r, "terminalId"))
	if terminalID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required"))
		return nil, false
	}
	resolve := reg.Open
	if attachedOnly {
		resolve = reg.Attached
	}
	term, err := resolve(terminalID, operatorID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, responses.FromDomain(err, ""))
		return nil, false
	}
	return term, true
}

func TerminalState(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalQuery(reg, logg, func(ctx context.Context, _ *http.Request, term *pos.Terminal) (pos.Result, error) {
		view, err := term.State(ctx)
		return pos.Result{View: view}, err
	})
}

// TerminalRelease closes the caller's terminal, dropping any open sale.
func TerminalRelease(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID := middleware.OperatorIDFromContext(r.Context())
		terminalID := strings.TrimSpace(chi.URLParam(r, "terminalId"))
		if err := reg.Release(terminalID, operatorID); err != nil {
			responses.WriteError(r.Context(), logg, w, responses.FromDomain(err, ""))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SaleStart(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusCreated, func(ctx context.Context, _ *http.Request, term *pos.Terminal) (pos.Result, error) {
		return term.StartSale(ctx)
	})
}

func SaleScan(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload codeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		return term.Scan(ctx, payload.Code)
	})
}

func SaleAddItem(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload codeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		return term.Type(ctx, payload.Code)
	})
}

func SaleChangeQuantity(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload quantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		return term.ChangeQuantity(ctx, chi.URLParam(r, "code"), *payload.Quantity)
	})
}

func SaleDecrement(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		return term.Decrement(ctx, chi.URLParam(r, "code"))
	})
}

func SaleVoidLine(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		return term.VoidLine(ctx, chi.URLParam(r, "code"))
	})
}

func SaleRemoveLast(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, _ *http.Request, term *pos.Terminal) (pos.Result, error) {
		return term.RemoveLast(ctx)
	})
}

func SaleSetNote(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload noteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		return term.SetNote(ctx, validators.SanitizeText(payload.Note, 500))
	})
}

func SaleFinalize(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, _ *http.Request, term *pos.Terminal) (pos.Result, error) {
		return term.Finalize(ctx)
	})
}

func SaleSetBuyer(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload buyerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		return term.SetBuyerID(ctx, payload.BuyerID)
	})
}

func SalePayment(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		method, err := payload.method()
		if err != nil {
			return pos.Result{}, err
		}
		return term.SetPaymentMethod(ctx, method)
	})
}

func SaleReceipt(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload receiptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		return term.ChooseReceipt(ctx, *payload.Requested)
	})
}

func SaleCancel(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, _ *http.Request, term *pos.Terminal) (pos.Result, error) {
		return term.CancelSale(ctx)
	})
}

func TerminalCloseAll(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, _ *http.Request, term *pos.Terminal) (pos.Result, error) {
		return term.CloseAll(ctx)
	})
}

func TerminalPressKey(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusOK, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		key, err := pos.ParseKey(chi.URLParam(r, "key"))
		if err != nil {
			return pos.Result{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown key")
		}
		return term.Press(ctx, key)
	})
}

func TerminalHistory(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalQuery(reg, logg, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			return pos.Result{}, err
		}
		return term.RecentSales(ctx, limit)
	})
}

func CatalogRegisterItem(reg TerminalRegistry, logg *logger.Logger) http.HandlerFunc {
	return terminalCommand(reg, logg, http.StatusCreated, func(ctx context.Context, r *http.Request, term *pos.Terminal) (pos.Result, error) {
		var payload registerItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return pos.Result{}, err
		}
		item, err := payload.toItem()
		if err != nil {
			return pos.Result{}, err
		}
		return term.RegisterItem(ctx, item)
	})
}
