package sequencer

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Memory is a process-local sequencer for the replay tool and tests.
type Memory struct {
	last atomic.Int64
}

// NewMemory starts issuing at start+1.
func NewMemory(start int64) *Memory {
	m := &Memory{}
	m.last.Store(start)
	return m
}

func (m *Memory) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return m.last.Add(1), nil
}

func (m *Memory) Current(context.Context) (int64, error) {
	return m.last.Load(), nil
}
