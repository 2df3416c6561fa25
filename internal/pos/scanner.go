package pos

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/internal/scan"
)

var ErrScannerActive = scan.ErrSessionActive

// OpenScanner acquires source and feeds its reads into the open sale until
// the scanner is closed, the sale is cancelled or the device stops.
func (t *Terminal) OpenScanner(ctx context.Context, source scan.Source) (Result, error) {
	const cmd = CommandOpenScanner
	return t.submit(ctx, cmd, func(reply replyFunc) {
		if source == nil {
			t.fail(reply, cmd, fmt.Errorf("%w: no scanner source", ErrInvalidCommand), "no scanner available")
			return
		}
		if _, open := t.machine.State().(checkout.Open); !open {
			t.fail(reply, cmd, t.precondition("start a sale before opening the scanner"), "")
			return
		}
		if t.scanner != nil && t.scanner.Active() {
			t.fail(reply, cmd, ErrScannerActive, "the scanner is already open")
			return
		}

		session, err := scan.NewSession(source, t.dedup, t.enqueueScan,
			scan.WithClock(t.now),
			scan.WithSuppressedHook(func(string) { t.metrics.IncScanSuppressed() }),
		)
		if err != nil {
			t.fail(reply, cmd, err, "")
			return
		}
		t.dialog = DialogScanner

		failed := func(err error) {
			t.closeDialog(DialogScanner)
			t.logg.Error(t.logCtx(cmd), "scanner acquire failed", err)
			t.fail(reply, cmd, err, "scanner unavailable")
		}
		t.goIO("scanner_acquire", t.lookupTimeout, func(ctx context.Context) func() {
			err := session.Start(t.baseCtx)
			if err == nil && ctx.Err() != nil {
				// Acquired after the deadline: nobody will own this run.
				_ = session.Stop()
				err = ctx.Err()
			}
			return func() {
				if err != nil {
					failed(err)
					return
				}
				if _, open := t.machine.State().(checkout.Open); !open || t.dialog != DialogScanner {
					_ = session.Stop()
					t.fail(reply, cmd, t.precondition("the scanner was closed before it started"), "")
					return
				}
				t.scanner = session
				t.ok(reply, cmd, "scanner open", Result{})
			}
		}, failed)
	})
}

// enqueueScan runs on the session goroutine. Reads are dropped when the
// queue is full so the device loop never blocks on the terminal.
func (t *Terminal) enqueueScan(code string) {
	select {
	case t.scans <- code:
	case <-t.quit:
	default:
		ctx := t.logg.WithTerminalID(t.baseCtx, t.id)
		t.logg.Warn(t.logg.WithField(ctx, "code", code), "scan queue full, read dropped")
	}
}

func (t *Terminal) forwardScans() {
	defer t.wg.Done()
	for {
		select {
		case code := <-t.scans:
			if _, err := t.addByCode(t.baseCtx, CommandScan, code, false); err != nil && errors.Is(err, ErrTerminalClosed) {
				return
			}
		case <-t.quit:
			return
		}
	}
}

// stopScanner runs on the loop.
func (t *Terminal) stopScanner() error {
	t.closeDialog(DialogScanner)
	if t.scanner == nil {
		return nil
	}
	session := t.scanner
	t.scanner = nil
	if err := session.Stop(); err != nil && !errors.Is(err, scan.ErrSessionInactive) {
		return err
	}
	return nil
}
