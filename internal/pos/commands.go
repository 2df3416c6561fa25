package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/pdv-backend/internal/cart"
	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
)

// StartSale opens a sale under a fresh number. The loop keeps serving other
// commands while the number is requested; a second start is rejected until
// the first resolves.
func (t *Terminal) StartSale(ctx context.Context) (Result, error) {
	const cmd = CommandStartSale
	return t.submit(ctx, cmd, func(reply replyFunc) {
		if _, idle := t.machine.State().(checkout.Idle); !idle {
			t.fail(reply, cmd, t.precondition("finish or cancel the current sale first"), "")
			return
		}
		if t.starting {
			t.fail(reply, cmd, t.precondition("a sale is already being started"), "")
			return
		}
		t.starting = true

		finish := func(number int64, err error) {
			t.starting = false
			if err != nil {
				if !errors.Is(err, ErrSequencerUnavailable) {
					err = fmt.Errorf("%w: %w", ErrSequencerUnavailable, err)
				}
				t.logg.Error(t.logCtx(cmd), "sale number request failed", err)
				t.fail(reply, cmd, err, "")
				return
			}
			if _, err := t.machine.Start(number, t.now(), t.operatorID, t.id); err != nil {
				t.fail(reply, cmd, err, "")
				return
			}
			t.epoch++
			t.dialog = DialogNone
			t.dedup.Reset()
			t.ok(reply, cmd, fmt.Sprintf("sale %d started", number), Result{})
		}
		t.goIO("sequencer_next", t.sequencerTimeout, func(ctx context.Context) func() {
			number, err := t.seq.Next(ctx)
			return func() { finish(number, err) }
		}, func(err error) { finish(0, err) })
	})
}

// Scan adds the item behind a code read by the scanner. Reads of the same
// code inside the debounce window are suppressed without a notification.
// Reads rejected because no sale is open do not count as accepted.
func (t *Terminal) Scan(ctx context.Context, code string) (Result, error) {
	return t.addByCode(ctx, CommandScan, catalog.NormalizeCode(code), true)
}

// Type adds the item behind a code keyed in by the operator.
func (t *Terminal) Type(ctx context.Context, code string) (Result, error) {
	return t.addByCode(ctx, CommandLookupItem, catalog.NormalizeCode(code), false)
}

func (t *Terminal) addByCode(ctx context.Context, cmd Command, code string, debounce bool) (Result, error) {
	return t.submit(ctx, cmd, func(reply replyFunc) {
		if code == "" {
			t.fail(reply, cmd, fmt.Errorf("%w: empty code", ErrInvalidCommand), "inform a code")
			return
		}
		if _, open := t.machine.State().(checkout.Open); !open {
			t.fail(reply, cmd, t.precondition("start a sale before adding items"), "")
			return
		}
		if debounce && !t.dedup.Accept(code, t.now()) {
			t.metrics.IncScanSuppressed()
			t.silent(reply, Result{Suppressed: true})
			return
		}
		epoch := t.epoch

		finish := func(item catalog.Item, err error) {
			if epoch != t.epoch {
				t.logg.Debug(t.logg.WithField(t.logCtx(cmd), "code", code), "late lookup dropped")
				t.silent(reply, Result{Dropped: true})
				return
			}
			if err != nil {
				t.lookupFailed(reply, cmd, code, err)
				return
			}
			line, err := t.machine.Add(item)
			if err != nil {
				t.fail(reply, cmd, err, fmt.Sprintf("%s was not added: the sale is no longer open", item.Description))
				return
			}
			if cmd == CommandLookupItem {
				t.closeDialog(DialogLookup)
			}
			t.ok(reply, cmd, fmt.Sprintf("%s added (%dx)", line.Description, line.Quantity), Result{Line: &line})
		}
		t.goIO("catalog_lookup", t.lookupTimeout, func(ctx context.Context) func() {
			item, err := t.catalog.Lookup(ctx, code)
			return func() { finish(item, err) }
		}, func(err error) { finish(catalog.Item{}, err) })
	})
}

func (t *Terminal) lookupFailed(reply replyFunc, cmd Command, code string, err error) {
	if errors.Is(err, ErrItemNotFound) {
		t.fail(reply, cmd, fmt.Errorf("%w: %s", err, code), fmt.Sprintf("item %s not found", code))
		return
	}
	if !errors.Is(err, ErrCatalogUnavailable) {
		err = fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	t.logg.Error(t.logg.WithField(t.logCtx(cmd), "code", code), "catalog lookup failed", err)
	t.fail(reply, cmd, err, fmt.Sprintf("catalog unavailable, item %s not added", code))
}

// ChangeQuantity sets the quantity of a line; n <= 0 removes it.
func (t *Terminal) ChangeQuantity(ctx context.Context, code string, n int) (Result, error) {
	const cmd = CommandChangeQuantity
	code = catalog.NormalizeCode(code)
	return t.submit(ctx, cmd, func(reply replyFunc) {
		line, err := t.machine.SetQuantity(code, n)
		if err != nil {
			t.cartFailed(reply, cmd, code, err)
			return
		}
		t.closeDialog(DialogQuantity)
		msg := fmt.Sprintf("%s quantity set to %d", line.Description, n)
		if n <= 0 {
			msg = fmt.Sprintf("%s removed", line.Description)
		}
		t.ok(reply, cmd, msg, Result{Line: &line})
	})
}

// Decrement lowers a line by one unit, removing it at one.
func (t *Terminal) Decrement(ctx context.Context, code string) (Result, error) {
	const cmd = CommandDecrement
	code = catalog.NormalizeCode(code)
	return t.submit(ctx, cmd, func(reply replyFunc) {
		line, kept, err := t.machine.DecrementOrRemove(code)
		if err != nil {
			t.cartFailed(reply, cmd, code, err)
			return
		}
		if !kept {
			t.ok(reply, cmd, fmt.Sprintf("%s removed", line.Description), Result{})
			return
		}
		t.ok(reply, cmd, fmt.Sprintf("%s quantity set to %d", line.Description, line.Quantity), Result{Line: &line})
	})
}

// RemoveLast drops the most recently added line.
func (t *Terminal) RemoveLast(ctx context.Context) (Result, error) {
	const cmd = CommandRemoveLast
	return t.submit(ctx, cmd, func(reply replyFunc) {
		line, err := t.machine.RemoveLast()
		if err != nil {
			t.cartFailed(reply, cmd, "", err)
			return
		}
		t.ok(reply, cmd, fmt.Sprintf("%s removed", line.Description), Result{Line: &line})
	})
}

// VoidLine removes a line whatever its quantity.
func (t *Terminal) VoidLine(ctx context.Context, code string) (Result, error) {
	const cmd = CommandVoidLine
	code = catalog.NormalizeCode(code)
	return t.submit(ctx, cmd, func(reply replyFunc) {
		line, err := t.machine.Void(code)
		if err != nil {
			t.cartFailed(reply, cmd, code, err)
			return
		}
		t.closeDialog(DialogVoidLine)
		t.ok(reply, cmd, fmt.Sprintf("%s voided", line.Description), Result{Line: &line})
	})
}

func (t *Terminal) cartFailed(reply replyFunc, cmd Command, code string, err error) {
	if errors.Is(err, cart.ErrLineNotFound) {
		msg := "the cart is empty"
		if code != "" {
			msg = fmt.Sprintf("item %s is not in the cart", code)
		}
		t.fail(reply, cmd, fmt.Errorf("%w: %w", ErrInvalidCommand, err), msg)
		return
	}
	t.fail(reply, cmd, err, "")
}

// SetNote replaces the note of the open sale.
func (t *Terminal) SetNote(ctx context.Context, note string) (Result, error) {
	const cmd = CommandEditSale
	return t.submit(ctx, cmd, func(reply replyFunc) {
		if err := t.machine.SetNote(note); err != nil {
			t.fail(reply, cmd, err, "")
			return
		}
		t.closeDialog(DialogEditSale)
		t.ok(reply, cmd, "sale updated", Result{})
	})
}

// Finalize closes item entry and asks for the buyer id.
func (t *Terminal) Finalize(ctx context.Context) (Result, error) {
	const cmd = CommandFinalize
	return t.submit(ctx, cmd, func(reply replyFunc) {
		if err := t.machine.Finalize(); err != nil {
			t.fail(reply, cmd, err, "")
			return
		}
		t.dialog = DialogNone
		if err := t.stopScanner(); err != nil {
			t.logg.Error(t.logCtx(cmd), "scanner release failed", err)
		}
		t.ok(reply, cmd, "inform the buyer id or skip it", Result{})
	})
}

// SetBuyerID attaches the buyer's CPF; nil or blank skips it.
func (t *Terminal) SetBuyerID(ctx context.Context, raw *string) (Result, error) {
	const cmd = CommandSetBuyerID
	return t.submit(ctx, cmd, func(reply replyFunc) {
		if err := t.machine.SetBuyerID(raw); err != nil {
			t.fail(reply, cmd, err, "")
			return
		}
		t.ok(reply, cmd, "choose the payment method", Result{})
	})
}

// SetPaymentMethod records the payment and commits the sale. On failure the
// terminal stays at payment selection with the same number, cart and buyer.
func (t *Terminal) SetPaymentMethod(ctx context.Context, method enums.PaymentMethod) (Result, error) {
	const cmd = CommandSetPayment
	return t.submit(ctx, cmd, func(reply replyFunc) {
		sale, err := t.machine.BeginCommit(method)
		if err != nil {
			t.fail(reply, cmd, err, "")
			return
		}

		finish := func(committedAt time.Time, err error) {
			if err != nil {
				_ = t.machine.CommitFailed()
				if !errors.Is(err, ErrPersistFailed) {
					err = fmt.Errorf("%w: %w", ErrPersistFailed, err)
				}
				msg := "sale commit failed"
				if errors.Is(err, ErrNumberInUse) {
					msg = "sale number collides with a stored sale, check the sequencer"
				}
				t.logg.Error(t.logCtx(cmd), msg, err)
				t.fail(reply, cmd, err, "")
				return
			}
			saved, err := t.machine.CommitSucceeded(committedAt)
			if err != nil {
				t.fail(reply, cmd, err, "")
				return
			}
			t.metrics.IncSaleCommitted(string(method))
			t.ok(reply, cmd, fmt.Sprintf("sale %d saved, total %s; print a receipt?", saved.Number, saved.Total), Result{})
		}
		t.goIO("sale_commit", t.persistTimeout, func(ctx context.Context) func() {
			committedAt, err := t.sales.Commit(ctx, sale)
			return func() { finish(committedAt, err) }
		}, func(err error) { finish(time.Time{}, err) })
	})
}

// ChooseReceipt ends a saved sale. The choice is stored in the background;
// a failure there is logged and does not reopen the sale.
func (t *Terminal) ChooseReceipt(ctx context.Context, requested bool) (Result, error) {
	const cmd = CommandChooseReceipt
	return t.submit(ctx, cmd, func(reply replyFunc) {
		receipt, err := t.machine.ChooseReceipt(requested)
		if err != nil {
			t.fail(reply, cmd, err, "")
			return
		}
		logCtx := t.logg.WithSaleNumber(t.logCtx(cmd), receipt.SaleNumber)

		recorded := func(err error) {
			if err != nil {
				t.logg.Error(logCtx, "receipt choice not recorded", err)
			}
		}
		t.goIO("receipt_record", t.persistTimeout, func(ctx context.Context) func() {
			err := t.sales.RecordReceiptChoice(ctx, receipt.SaleNumber, receipt.Requested)
			return func() { recorded(err) }
		}, recorded)

		msg := fmt.Sprintf("sale %d finished without receipt", receipt.SaleNumber)
		if requested {
			msg = fmt.Sprintf("sale %d finished, printing receipt", receipt.SaleNumber)
		}
		t.ok(reply, cmd, msg, Result{})
	})
}

// CancelSale abandons the sale without saving it. Lookups still in flight
// for it are dropped when they return.
func (t *Terminal) CancelSale(ctx context.Context) (Result, error) {
	const cmd = CommandCancelSale
	return t.submit(ctx, cmd, func(reply replyFunc) {
		header, err := t.machine.Cancel()
		if err != nil {
			t.fail(reply, cmd, err, "")
			return
		}
		t.epoch++
		t.dialog = DialogNone
		if err := t.stopScanner(); err != nil {
			t.logg.Error(t.logCtx(cmd), "scanner release failed", err)
		}
		t.dedup.Reset()
		t.ok(reply, cmd, fmt.Sprintf("sale %d cancelled", header.Number), Result{})
	})
}

// CloseAll closes any open dialog and the scanner. Sale data is kept.
func (t *Terminal) CloseAll(ctx context.Context) (Result, error) {
	const cmd = CommandCloseAll
	return t.submit(ctx, cmd, func(reply replyFunc) {
		t.dialog = DialogNone
		if err := t.stopScanner(); err != nil {
			t.logg.Error(t.logCtx(cmd), "scanner release failed", err)
		}
		t.ok(reply, cmd, "dialogs closed", Result{})
	})
}

// History lists the operator's latest sales.
func (t *Terminal) History(ctx context.Context) (Result, error) {
	return t.RecentSales(ctx, t.historyLimit)
}

// RecentSales is History with an explicit limit; limit <= 0 uses the
// configured one.
func (t *Terminal) RecentSales(ctx context.Context, limit int) (Result, error) {
	const cmd = CommandHistory
	if limit <= 0 {
		limit = t.historyLimit
	}
	return t.submit(ctx, cmd, func(reply replyFunc) {
		finish := func(history []sales.Summary, err error) {
			if err != nil {
				t.logg.Error(t.logCtx(cmd), "sale history failed", err)
				t.fail(reply, cmd, err, "sale history unavailable, try again")
				return
			}
			t.dialog = DialogHistory
			t.ok(reply, cmd, fmt.Sprintf("%d recent sales", len(history)), Result{History: history})
		}
		t.goIO("sale_history", t.persistTimeout, func(ctx context.Context) func() {
			history, err := t.sales.ListRecent(ctx, t.operatorID, limit)
			return func() { finish(history, err) }
		}, func(err error) { finish(nil, err) })
	})
}

// RegisterItem adds a new item to the catalog, refusing codes already in use.
func (t *Terminal) RegisterItem(ctx context.Context, item catalog.Item) (Result, error) {
	const cmd = CommandRegisterItem
	return t.submit(ctx, cmd, func(reply replyFunc) {
		item, err := catalog.Validate(item)
		if err != nil {
			t.fail(reply, cmd, err, err.Error())
			return
		}

		finish := func(err error) {
			switch {
			case errors.Is(err, ErrItemExists):
				t.fail(reply, cmd, err, fmt.Sprintf("code %s is already registered", item.Code))
			case err != nil:
				t.logg.Error(t.logCtx(cmd), "item registration failed", err)
				t.fail(reply, cmd, err, "catalog unavailable, item not registered")
			default:
				t.closeDialog(DialogRegisterItem)
				t.ok(reply, cmd, fmt.Sprintf("%s registered", item.Description), Result{})
			}
		}
		t.goIO("catalog_register", t.lookupTimeout, func(ctx context.Context) func() {
			err := t.register(ctx, item)
			return func() { finish(err) }
		}, finish)
	})
}

func (t *Terminal) register(ctx context.Context, item catalog.Item) error {
	exists, err := t.catalog.Exists(ctx, item.Code)
	if err != nil {
		return err
	}
	if exists {
		return ErrItemExists
	}
	return t.catalog.Register(ctx, item)
}

func (t *Terminal) openDialog(ctx context.Context, cmd Command, d Dialog, needsOpen, needsLines bool) (Result, error) {
	return t.submit(ctx, cmd, func(reply replyFunc) {
		if needsOpen {
			if _, open := t.machine.State().(checkout.Open); !open {
				t.fail(reply, cmd, t.precondition("start a sale first"), "")
				return
			}
		}
		if needsLines && t.machine.Cart().Empty() {
			t.fail(reply, cmd, t.precondition("add an item first"), "")
			return
		}
		t.dialog = d
		t.ok(reply, cmd, fmt.Sprintf("%s opened", d), Result{})
	})
}
