package pos

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/internal/sequencer"
	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
	"github.com/angelmondragon/pdv-backend/pkg/metrics"
)

// RegistryParams holds what every terminal of a process shares.
type RegistryParams struct {
	Config    config.POSConfig
	Sequencer sequencer.Sequencer
	Catalog   catalog.Catalog
	Sales     SaleStore
	Logger    *logger.Logger
	Metrics   *metrics.POSMetrics
	Clock     func() time.Time
}

// Registry keeps one running terminal per terminal id. A terminal belongs to
// the operator that opened it until it is released.
type Registry struct {
	params RegistryParams

	mu        sync.Mutex
	terminals map[string]*Terminal
	closed    bool
}

func NewRegistry(params RegistryParams) *Registry {
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &Registry{params: params, terminals: make(map[string]*Terminal)}
}

// Open returns the terminal for terminalID, starting it for operatorID when
// it is not running yet.
func (r *Registry) Open(terminalID, operatorID string) (*Terminal, error) {
	terminalID = strings.TrimSpace(terminalID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrTerminalClosed
	}
	if t, ok := r.terminals[terminalID]; ok {
		if t.OperatorID() != operatorID {
			return nil, ErrTerminalInUse
		}
		return t, nil
	}

	t, err := NewTerminal(TerminalParams{
		TerminalID: terminalID,
		OperatorID: operatorID,
		Config:     r.params.Config,
		Sequencer:  r.params.Sequencer,
		Catalog:    r.params.Catalog,
		Sales:      r.params.Sales,
		Logger:     r.params.Logger,
		Metrics:    r.params.Metrics,
		Clock:      r.params.Clock,
	})
	if err != nil {
		return nil, err
	}
	r.terminals[terminalID] = t

	ctx := r.params.Logger.WithTerminalID(context.Background(), terminalID)
	ctx = r.params.Logger.WithOperatorID(ctx, operatorID)
	r.params.Logger.Info(ctx, "terminal opened")
	return t, nil
}

// Get returns a running terminal.
func (r *Registry) Get(terminalID string) (*Terminal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.terminals[strings.TrimSpace(terminalID)]
	if !ok {
		return nil, ErrTerminalNotFound
	}
	return t, nil
}

// Attached returns the running terminal held by operatorID without starting
// one, so read-only callers cannot spawn terminals for arbitrary ids.
func (r *Registry) Attached(terminalID, operatorID string) (*Terminal, error) {
	t, err := r.Get(terminalID)
	if err != nil {
		return nil, err
	}
	if t.OperatorID() != operatorID {
		return nil, ErrTerminalInUse
	}
	return t, nil
}

// Release stops the terminal held by operatorID. Any sale left open on it
// is abandoned without being saved.
func (r *Registry) Release(terminalID, operatorID string) error {
	terminalID = strings.TrimSpace(terminalID)
	r.mu.Lock()
	t, ok := r.terminals[terminalID]
	if !ok {
		r.mu.Unlock()
		return ErrTerminalNotFound
	}
	if t.OperatorID() != operatorID {
		r.mu.Unlock()
		return ErrTerminalInUse
	}
	delete(r.terminals, terminalID)
	r.mu.Unlock()
	return t.Close()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.terminals)
}

// Close stops every terminal.
func (r *Registry) Close() error {
	r.mu.Lock()
	terminals := r.terminals
	r.terminals = make(map[string]*Terminal)
	r.closed = true
	r.mu.Unlock()

	var err error
	for _, t := range terminals {
		err = multierr.Append(err, t.Close())
	}
	return err
}
