// Package pos runs the terminals of the point of sale. Each terminal is a
// single event loop: commands, catalog answers, sale numbers and commit
// outcomes are all applied on that goroutine, while the calls that reach
// other systems run beside it under bounded timeouts.
package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/pdv-backend/internal/cart"
	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	"github.com/angelmondragon/pdv-backend/internal/scan"
	"github.com/angelmondragon/pdv-backend/internal/sequencer"
	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
	"github.com/angelmondragon/pdv-backend/pkg/metrics"
)

const (
	defaultLookupTimeout    = 3 * time.Second
	defaultSequencerTimeout = 3 * time.Second
	defaultPersistTimeout   = 5 * time.Second
	scanQueueSize           = 64
)

// SaleStore persists finished sales.
type SaleStore interface {
	Commit(ctx context.Context, sale checkout.Sale) (time.Time, error)
	RecordReceiptChoice(ctx context.Context, saleNumber int64, requested bool) error
	ListRecent(ctx context.Context, operatorID string, limit int) ([]sales.Summary, error)
}

// TerminalParams wires a terminal. Dedup is shared by scans sent through
// Scan and by the scanner session; a fresh one using Config.DebounceWindow
// is created when nil.
type TerminalParams struct {
	TerminalID string
	OperatorID string
	Config     config.POSConfig
	Sequencer  sequencer.Sequencer
	Catalog    catalog.Catalog
	Sales      SaleStore
	Logger     *logger.Logger
	Metrics    *metrics.POSMetrics
	Dedup      *scan.Deduplicator
	Clock      func() time.Time
}

type Terminal struct {
	id         string
	operatorID string

	seq     sequencer.Sequencer
	catalog catalog.Catalog
	sales   SaleStore
	logg    *logger.Logger
	metrics *metrics.POSMetrics
	dedup   *scan.Deduplicator
	now     func() time.Time

	lookupTimeout    time.Duration
	sequencerTimeout time.Duration
	persistTimeout   time.Duration
	historyLimit     int

	baseCtx    context.Context
	cancelBase context.CancelFunc
	ops        chan func()
	scans      chan string
	quit       chan struct{}
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
	closeErr   error

	// Owned by the loop goroutine.
	machine  *checkout.Machine
	epoch    uint64
	starting bool
	dialog   Dialog
	scanner  *scan.Session
}

type replyFunc func(Result, error)

type outcome struct {
	res Result
	err error
}

func NewTerminal(params TerminalParams) (*Terminal, error) {
	if strings.TrimSpace(params.TerminalID) == "" {
		return nil, errors.New("terminal id is required")
	}
	if strings.TrimSpace(params.OperatorID) == "" {
		return nil, errors.New("operator id is required")
	}
	if params.Sequencer == nil {
		return nil, errors.New("sequencer is required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if params.Sales == nil {
		return nil, errors.New("sale store is required")
	}

	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	dedup := params.Dedup
	if dedup == nil {
		dedup = scan.NewDeduplicator(params.Config.DebounceWindow)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	t := &Terminal{
		id:               params.TerminalID,
		operatorID:       params.OperatorID,
		seq:              params.Sequencer,
		catalog:          params.Catalog,
		sales:            params.Sales,
		logg:             logg,
		metrics:          params.Metrics,
		dedup:            dedup,
		now:              clock,
		lookupTimeout:    orDefault(params.Config.LookupTimeout, defaultLookupTimeout),
		sequencerTimeout: orDefault(params.Config.SequencerTimeout, defaultSequencerTimeout),
		persistTimeout:   orDefault(params.Config.PersistTimeout, defaultPersistTimeout),
		historyLimit:     params.Config.HistoryLimit,
		baseCtx:          baseCtx,
		cancelBase:       cancel,
		ops:              make(chan func()),
		scans:            make(chan string, scanQueueSize),
		quit:             make(chan struct{}),
		done:             make(chan struct{}),
		machine:          checkout.NewMachine(),
	}
	if t.historyLimit <= 0 {
		t.historyLimit = sales.DefaultHistoryLimit
	}

	t.wg.Add(1)
	go t.forwardScans()
	go t.loop()
	return t, nil
}

func (t *Terminal) ID() string         { return t.id }
func (t *Terminal) OperatorID() string { return t.operatorID }

// Close stops the loop, releases the scanner and waits for in-flight calls
// to give up. Commands sent afterwards fail with ErrTerminalClosed.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		close(t.quit)
		<-t.done
		t.cancelBase()
		t.wg.Wait()
	})
	return t.closeErr
}

func (t *Terminal) loop() {
	defer close(t.done)
	for {
		select {
		case op := <-t.ops:
			op()
		case <-t.quit:
			if err := t.stopScanner(); err != nil {
				t.closeErr = err
			}
			return
		}
	}
}

// submit runs fn on the loop and waits for it, or for a follow-up it
// scheduled, to reply.
func (t *Terminal) submit(ctx context.Context, cmd Command, fn func(reply replyFunc)) (Result, error) {
	ch := make(chan outcome, 1)
	reply := func(res Result, err error) {
		if cmd != "" {
			t.metrics.ObserveCommand(string(cmd), err == nil)
		}
		ch <- outcome{res: res, err: err}
	}

	select {
	case t.ops <- func() { fn(reply) }:
	case <-t.quit:
		return Result{}, ErrTerminalClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-t.done:
		select {
		case o := <-ch:
			return o.res, o.err
		default:
			return Result{}, ErrTerminalClosed
		}
	}
}

// post schedules fn on the loop. It is a no-op once the terminal is closing.
func (t *Terminal) post(fn func()) {
	select {
	case t.ops <- fn:
	case <-t.quit:
	}
}

// goIO runs work beside the loop under timeout. The closure work returns is
// applied back on the loop. If the deadline passes first, expired runs on the
// loop instead and whatever work returns later is dropped, so a collaborator
// that ignores ctx cannot hold the terminal.
func (t *Terminal) goIO(op string, timeout time.Duration, work func(ctx context.Context) func(), expired func(err error)) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(t.baseCtx, timeout)
		defer cancel()
		started := time.Now()

		results := make(chan func(), 1)
		go func() { results <- work(ctx) }()

		select {
		case next := <-results:
			t.metrics.ObserveIO(op, time.Since(started))
			t.post(next)
		case <-ctx.Done():
			t.metrics.ObserveIO(op, time.Since(started))
			err := fmt.Errorf("%s gave up after %s: %w", op, timeout, ctx.Err())
			t.post(func() { expired(err) })
		}
	}()
}

// State returns the screen model of the terminal.
func (t *Terminal) State(ctx context.Context) (View, error) {
	res, err := t.submit(ctx, "", func(reply replyFunc) {
		reply(Result{View: t.view()}, nil)
	})
	return res.View, err
}

// Cart returns the lines and total of the open sale.
func (t *Terminal) Cart(ctx context.Context) (cart.Snapshot, error) {
	view, err := t.State(ctx)
	return view.Cart, err
}

func (t *Terminal) view() View {
	st := t.machine.State()
	v := View{
		TerminalID:    t.id,
		OperatorID:    t.operatorID,
		State:         st.Name(),
		Starting:      t.starting,
		Dialog:        t.dialog,
		ScannerActive: t.scanner != nil && t.scanner.Active(),
		Cart:          t.machine.Cart(),
	}
	if header, ok := checkout.HeaderOf(st); ok {
		v.SaleNumber = header.Number
		v.Note = header.Note
	}
	switch s := st.(type) {
	case checkout.AwaitingPayment:
		v.BuyerID = s.BuyerID
		v.PaymentMethod = s.Method
		v.Committing = s.Committing
	case checkout.AwaitingReceiptChoice:
		v.BuyerID = s.BuyerID
		v.PaymentMethod = s.Method
	}
	return v
}

func (t *Terminal) ok(reply replyFunc, cmd Command, msg string, res Result) {
	res.Notification = info(cmd, msg)
	res.View = t.view()
	t.logg.Info(t.logCtx(cmd), msg)
	reply(res, nil)
}

func (t *Terminal) fail(reply replyFunc, cmd Command, err error, msg string) {
	if msg == "" {
		msg = userMessage(err)
	}
	ctx := t.logg.WithField(t.logCtx(cmd), "error", err.Error())
	t.logg.Warn(ctx, msg)
	reply(Result{Notification: warn(cmd, msg), View: t.view()}, err)
}

// silent replies without a notification.
func (t *Terminal) silent(reply replyFunc, res Result) {
	res.View = t.view()
	reply(res, nil)
}

func (t *Terminal) logCtx(cmd Command) context.Context {
	ctx := t.logg.WithTerminalID(t.baseCtx, t.id)
	ctx = t.logg.WithOperatorID(ctx, t.operatorID)
	fields := map[string]any{"state": string(t.machine.State().Name())}
	if cmd != "" {
		fields["command"] = string(cmd)
	}
	ctx = t.logg.WithFields(ctx, fields)
	if header, ok := checkout.HeaderOf(t.machine.State()); ok {
		ctx = t.logg.WithSaleNumber(ctx, header.Number)
	}
	return ctx
}

func (t *Terminal) precondition(msg string) error {
	return &checkout.PreconditionError{State: t.machine.State().Name(), Precondition: msg}
}

func (t *Terminal) closeDialog(d Dialog) {
	if t.dialog == d {
		t.dialog = DialogNone
	}
}

func userMessage(err error) string {
	var pe *checkout.PreconditionError
	switch {
	case errors.As(err, &pe):
		return pe.Precondition
	case errors.Is(err, ErrEmptyCart):
		return "add at least one item before finalizing"
	case errors.Is(err, ErrInvalidBuyerID):
		return fmt.Sprintf("buyer id must have %d digits", checkout.BuyerIDLength)
	case errors.Is(err, ErrItemNotFound):
		return "item not found"
	case errors.Is(err, ErrCatalogUnavailable):
		return "catalog unavailable, try again"
	case errors.Is(err, ErrSequencerUnavailable):
		return "sale number unavailable, try again"
	case errors.Is(err, ErrPersistFailed):
		return "sale could not be saved, choose the payment method again"
	default:
		return err.Error()
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
