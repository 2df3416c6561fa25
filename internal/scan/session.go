package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/multierr"
)

var (
	ErrSessionActive   = errors.New("scanner session already active")
	ErrSessionInactive = errors.New("scanner session not active")
)

// Source acquires a scanner device such as a camera or a serial reader.
type Source interface {
	Acquire(ctx context.Context) (Reader, error)
}

// Reader yields decoded codes from an acquired device. Read must return
// promptly once ctx is done, and io.EOF when the device has no more input.
type Reader interface {
	Read(ctx context.Context) (string, error)
	Close() error
}

// Sink receives codes that passed the deduplicator.
type Sink func(code string)

// Session owns one device acquisition from Start until Stop. The device is
// released on Stop, when the parent context ends, and on any read error.
type Session struct {
	source Source
	dedup  *Deduplicator
	sink   Sink
	now    func() time.Time

	onSuppressed func(code string)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

type SessionOption func(*Session)

// WithClock overrides the time source used to stamp reads.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSuppressedHook is called for every read dropped by the deduplicator.
func WithSuppressedHook(fn func(code string)) SessionOption {
	return func(s *Session) {
		s.onSuppressed = fn
	}
}

func NewSession(source Source, dedup *Deduplicator, sink Sink, opts ...SessionOption) (*Session, error) {
	if source == nil {
		return nil, fmt.Errorf("scanner source required")
	}
	if dedup == nil {
		return nil, fmt.Errorf("deduplicator required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink required")
	}
	s := &Session{source: source, dedup: dedup, sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start acquires the device and begins forwarding codes.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		select {
		case <-s.done:
		default:
			return ErrSessionActive
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	reader, err := s.source.Acquire(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("acquire scanner: %w", err)
	}

	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.lastErr = nil
	go s.run(runCtx, reader, done)
	return nil
}

func (s *Session) run(ctx context.Context, reader Reader, done chan struct{}) {
	var runErr error
	defer func() {
		runErr = multierr.Append(runErr, reader.Close())
		s.mu.Lock()
		s.lastErr = runErr
		s.mu.Unlock()
		close(done)
	}()

	for {
		code, err := reader.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			runErr = fmt.Errorf("read scanner: %w", err)
			return
		}
		if code == "" {
			continue
		}
		if s.dedup.Accept(code, s.now()) {
			s.sink(code)
		} else if s.onSuppressed != nil {
			s.onSuppressed(code)
		}
	}
}

// Stop releases the device and waits for the read loop to exit. It returns
// any read or close error from the finished run.
func (s *Session) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if done == nil {
		return ErrSessionInactive
	}

	cancel()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.lastErr
	s.cancel = nil
	s.done = nil
	s.lastErr = nil
	return err
}

// Active reports whether the device is currently held.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Done is closed when the current run ends, or nil when no run was started.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
