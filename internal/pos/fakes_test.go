package pos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/internal/checkout"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	"github.com/angelmondragon/pdv-backend/internal/sequencer"
	"github.com/angelmondragon/pdv-backend/pkg/config"
)

var (
	soda  = catalog.Item{Code: "123", Description: "Refrigerante", UnitPrice: 500}
	bread = catalog.Item{Code: "456", Description: "Pão", UnitPrice: 320}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// gate blocks a call until released, reporting when the call arrives.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) arrived(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("gated call never arrived")
	}
}

// stall blocks a call until freed and ignores ctx, like a driver stuck on a
// dead connection.
type stall struct {
	entered chan struct{}
	freed   chan struct{}
	once    sync.Once
}

func newStall() *stall {
	return &stall{entered: make(chan struct{}, 8), freed: make(chan struct{})}
}

func (s *stall) wait() {
	s.entered <- struct{}{}
	<-s.freed
}

func (s *stall) free() {
	s.once.Do(func() { close(s.freed) })
}

type stalledCatalog struct {
	catalog.Catalog
	stall *stall
}

func (c *stalledCatalog) Lookup(ctx context.Context, code string) (catalog.Item, error) {
	c.stall.wait()
	return c.Catalog.Lookup(context.Background(), code)
}

type gatedCatalog struct {
	catalog.Catalog
	gate *gate
}

func (c *gatedCatalog) Lookup(ctx context.Context, code string) (catalog.Item, error) {
	if err := c.gate.wait(ctx); err != nil {
		return catalog.Item{}, err
	}
	return c.Catalog.Lookup(ctx, code)
}

type failingCatalog struct {
	catalog.Catalog
}

func (failingCatalog) Lookup(context.Context, string) (catalog.Item, error) {
	return catalog.Item{}, errors.New("connection refused")
}

// flakyStore fails the first failures commits.
type flakyStore struct {
	*sales.Memory
	mu       sync.Mutex
	failures int
	gate     *gate
	stall    *stall
}

func (s *flakyStore) Commit(ctx context.Context, sale checkout.Sale) (time.Time, error) {
	if s.stall != nil {
		s.stall.wait()
		ctx = context.Background()
	}
	if s.gate != nil {
		if err := s.gate.wait(ctx); err != nil {
			return time.Time{}, err
		}
	}
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return time.Time{}, errors.New("connection reset by peer")
	}
	return s.Memory.Commit(ctx, sale)
}

type harness struct {
	terminal *Terminal
	clock    *fakeClock
	store    *flakyStore
	catalog  catalog.Catalog
}

type harnessOption func(*TerminalParams, *harness)

func withCatalog(c catalog.Catalog) harnessOption {
	return func(p *TerminalParams, h *harness) {
		p.Catalog = c
		h.catalog = c
	}
}

func withSequencer(s sequencer.Sequencer) harnessOption {
	return func(p *TerminalParams, _ *harness) { p.Sequencer = s }
}

func withTimeouts(d time.Duration) harnessOption {
	return func(p *TerminalParams, _ *harness) {
		p.Config.LookupTimeout = d
		p.Config.SequencerTimeout = d
		p.Config.PersistTimeout = d
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		clock:   newFakeClock(),
		store:   &flakyStore{Memory: sales.NewMemory()},
		catalog: catalog.NewMemory(soda, bread),
	}
	cfg := config.POSConfig{
		DebounceWindow:   500 * time.Millisecond,
		LookupTimeout:    time.Second,
		SequencerTimeout: time.Second,
		PersistTimeout:   time.Second,
	}
	params := TerminalParams{
		TerminalID: "T1",
		OperatorID: "op-1",
		Config:     cfg,
		Sequencer:  sequencer.NewMemory(41),
		Catalog:    h.catalog,
		Sales:      h.store,
	}
	for _, opt := range opts {
		opt(&params, h)
	}
	params.Clock = h.clock.Now

	term, err := NewTerminal(params)
	require.NoError(t, err)
	t.Cleanup(func() { _ = term.Close() })
	h.terminal = term
	return h
}

func (h *harness) start(t *testing.T) Result {
	t.Helper()
	res, err := h.terminal.StartSale(context.Background())
	require.NoError(t, err)
	return res
}
