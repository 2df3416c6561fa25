// Package sequencer issues sale numbers. Every backend relies on an atomic
// increment-or-create in the backing store, so numbers stay unique across
// processes without any in-process locking.
package sequencer

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the counter store could not be reached. Callers
// must not fabricate a number when they see it.
var ErrUnavailable = errors.New("sale sequencer unavailable")

// Sequencer hands out the next sale number. Numbers are never reissued, even
// when the sale that received one is later abandoned.
type Sequencer interface {
	Next(ctx context.Context) (int64, error)
}

// Func adapts a plain function to the Sequencer interface.
type Func func(ctx context.Context) (int64, error)

func (f Func) Next(ctx context.Context) (int64, error) {
	return f(ctx)
}
