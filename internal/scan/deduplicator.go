// Package scan filters raw decoder output and owns the scanner device lifecycle.
package scan

import (
	"sync"
	"time"
)

// DefaultWindow is the debounce window used when none is configured.
const DefaultWindow = 500 * time.Millisecond

// Deduplicator suppresses repeated reads of one physical scan. Only the last
// accepted read is remembered; a different code always passes.
type Deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	lastCode string
	lastAt   time.Time
	seen     bool
}

// NewDeduplicator returns a filter with the given window. A zero window
// disables suppression.
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window < 0 {
		window = 0
	}
	return &Deduplicator{window: window}
}

// Accept reports whether the read should be forwarded. Suppressed reads do not
// move the window, so a code held under the reader passes again once the
// window has elapsed since the last accepted read.
func (d *Deduplicator) Accept(code string, at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen && code == d.lastCode && at.Sub(d.lastAt) < d.window {
		return false
	}
	d.lastCode = code
	d.lastAt = at
	d.seen = true
	return true
}

// Reset forgets the last accepted read.
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastCode = ""
	d.lastAt = time.Time{}
	d.seen = false
}

func (d *Deduplicator) Window() time.Duration {
	return d.window
}
