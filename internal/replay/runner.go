package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/internal/pos"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	"github.com/angelmondragon/pdv-backend/internal/sequencer"
	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/enums"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
	"github.com/angelmondragon/pdv-backend/pkg/metrics"
)

var ErrExpectationFailed = errors.New("scenario expectation failed")

const defaultDebounce = 500 * time.Millisecond

var errorNames = map[string]error{
	"invalid_command":       pos.ErrInvalidCommand,
	"empty_cart":            pos.ErrEmptyCart,
	"invalid_buyer_id":      pos.ErrInvalidBuyerID,
	"item_not_found":        pos.ErrItemNotFound,
	"catalog_unavailable":   pos.ErrCatalogUnavailable,
	"sequencer_unavailable": pos.ErrSequencerUnavailable,
	"persist_failed":        pos.ErrPersistFailed,
	"item_exists":           pos.ErrItemExists,
	"invalid_item":          pos.ErrInvalidItem,
	"line_not_found":        pos.ErrLineNotFound,
}

type Options struct {
	Logger  *logger.Logger
	Metrics *metrics.POSMetrics
	Start   time.Time
}

type StepResult struct {
	Index      int
	Action     string
	At         time.Time
	Level      pos.Level
	Message    string
	Err        error
	Suppressed bool
}

type Report struct {
	Scenario string
	Steps    []StepResult
	Final    pos.View
	Sales    []checkout.Sale
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Run plays sc against a terminal backed by in-memory stores. The returned
// error joins every step or final expectation that did not hold.
func Run(ctx context.Context, sc Scenario, opts Options) (Report, error) {
	items, err := sc.items()
	if err != nil {
		return Report{}, err
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	}
	clk := &clock{now: start}
	debounce := sc.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	store := sales.NewMemory()
	term, err := pos.NewTerminal(pos.TerminalParams{
		TerminalID: sc.Terminal,
		OperatorID: sc.Operator,
		Config:     config.POSConfig{DebounceWindow: debounce},
		Sequencer:  sequencer.NewMemory(sc.StartNumber),
		Catalog:    catalog.NewMemory(items...),
		Sales:      store,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Clock:      clk.Now,
	})
	if err != nil {
		return Report{}, err
	}
	defer term.Close()

	report := Report{Scenario: sc.Name}
	var failures error
	for i, step := range sc.Steps {
		clk.advance(step.After)
		action, _ := step.action()
		res, err := play(ctx, term, step)

		out := StepResult{Index: i + 1, Action: action, At: clk.Now(), Err: err, Suppressed: res.Suppressed}
		if res.Notification != nil {
			out.Level = res.Notification.Level
			out.Message = res.Notification.Message
		}
		report.Steps = append(report.Steps, out)

		if mismatch := checkStepError(step, err); mismatch != nil {
			failures = multierr.Append(failures, fmt.Errorf("step %d (%s): %w", i+1, action, mismatch))
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	final, err := term.State(ctx)
	if err != nil {
		return report, err
	}
	report.Final = final
	report.Sales = store.Sales()
	failures = multierr.Append(failures, checkFinal(sc.Expect, report))

	if failures != nil {
		return report, fmt.Errorf("%w: %w", ErrExpectationFailed, failures)
	}
	return report, nil
}

func play(ctx context.Context, term *pos.Terminal, step Step) (pos.Result, error) {
	switch {
	case step.Key != "":
		k, err := pos.ParseKey(step.Key)
		if err != nil {
			return pos.Result{}, err
		}
		return term.Press(ctx, k)
	case step.Scan != "":
		return term.Scan(ctx, step.Scan)
	case step.Type != "":
		return term.Type(ctx, step.Type)
	case step.Quantity != nil:
		return term.ChangeQuantity(ctx, step.Quantity.Code, step.Quantity.N)
	case step.Decrement != "":
		return term.Decrement(ctx, step.Decrement)
	case step.Void != "":
		return term.VoidLine(ctx, step.Void)
	case step.Note != nil:
		return term.SetNote(ctx, *step.Note)
	case step.Buyer != nil:
		return term.SetBuyerID(ctx, step.Buyer)
	case step.SkipBuyer:
		return term.SetBuyerID(ctx, nil)
	case step.Pay != "":
		method, err := enums.ParsePaymentMethod(step.Pay)
		if err != nil {
			return pos.Result{}, fmt.Errorf("%w: %w", pos.ErrInvalidCommand, err)
		}
		return term.SetPaymentMethod(ctx, method)
	case step.Receipt != nil:
		return term.ChooseReceipt(ctx, *step.Receipt)
	default:
		return pos.Result{}, fmt.Errorf("%w: empty step", pos.ErrInvalidCommand)
	}
}

func checkStepError(step Step, err error) error {
	if step.ExpectError == "" {
		if err != nil {
			return fmt.Errorf("unexpected error: %w", err)
		}
		return nil
	}
	want, ok := errorNames[step.ExpectError]
	if !ok {
		return fmt.Errorf("unknown expected error %q", step.ExpectError)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("expected %s, got %v", step.ExpectError, err)
	}
	return nil
}

func checkFinal(want *Expectation, report Report) error {
	if want == nil {
		return nil
	}
	var err error
	if want.State != "" && string(report.Final.State) != want.State {
		err = multierr.Append(err, fmt.Errorf("final state %s, want %s", report.Final.State, want.State))
	}
	if want.Lines != nil && len(report.Final.Cart.Lines) != *want.Lines {
		err = multierr.Append(err, fmt.Errorf("cart has %d lines, want %d", len(report.Final.Cart.Lines), *want.Lines))
	}
	if want.Total != "" {
		total := report.Final.Cart.Total.String()
		if len(report.Sales) > 0 && report.Final.Cart.Empty() {
			total = report.Sales[len(report.Sales)-1].Total.String()
		}
		if total != want.Total {
			err = multierr.Append(err, fmt.Errorf("total %s, want %s", total, want.Total))
		}
	}
	if want.Sales != nil && len(report.Sales) != *want.Sales {
		err = multierr.Append(err, fmt.Errorf("%d sales saved, want %d", len(report.Sales), *want.Sales))
	}
	return err
}
