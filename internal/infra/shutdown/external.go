package shutdown

import (
	"context"
	"sync"
)

// ExternalSignal adapts a caller-owned context into a Signal.
//
// Cancellation is driven entirely by the context's owner. Close detaches
// pending callbacks but never cancels the context.
type ExternalSignal struct {
	ctx context.Context

	mu     sync.Mutex
	stops  []func() bool
	closed bool
}

// External returns a Signal that fires when ctx is cancelled.
// A nil ctx yields an inert signal.
func External(ctx context.Context) *ExternalSignal {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExternalSignal{ctx: ctx}
}

// Context returns the wrapped context.
func (s *ExternalSignal) Context() context.Context {
	return s.ctx
}

// OnFire registers fn to run after the wrapped context is cancelled.
//
// fn runs on its own goroutine: context cancel functions cannot run
// callbacks on the canceller's goroutine.
func (s *ExternalSignal) OnFire(fn func()) {
	if s.ctx.Done() == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stops = append(s.stops, context.AfterFunc(s.ctx, fn))
}

// Close detaches callbacks that have not run yet.
func (s *ExternalSignal) Close() error {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.closed = true
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	return nil
}
