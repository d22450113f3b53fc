// Package shutdowntest provides a controllable shutdown.Signal for tests.
package shutdowntest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/jobhost/internal/infra/shutdown"
)

// Source is the cancellation source name used by Signal.
const Source = "test"

// Signal is a shutdown.Signal fired by hand.
type Signal struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu        sync.Mutex
	fired     bool
	callbacks []func()

	closed atomic.Int32
}

var _ shutdown.Signal = (*Signal)(nil)

// New returns an unfired Signal.
func New() *Signal {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Signal{ctx: ctx, cancel: cancel}
}

// Context returns the signal's token.
func (s *Signal) Context() context.Context {
	return s.ctx
}

// OnFire registers fn to run when Fire is called.
func (s *Signal) OnFire(fn func()) {
	s.mu.Lock()
	if !s.fired {
		s.callbacks = append(s.callbacks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// Fire cancels the token and runs the callbacks on the caller. It returns
// once every callback has returned. Repeated calls do nothing.
func (s *Signal) Fire() {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	s.cancel(shutdown.Cause(Source))
	callbacks := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// FireAfter calls Fire on a timer goroutine after d. The returned channel
// receives how long the Fire call blocked.
func (s *Signal) FireAfter(d time.Duration) <-chan time.Duration {
	blocked := make(chan time.Duration, 1)
	time.AfterFunc(d, func() {
		start := time.Now()
		s.Fire()
		blocked <- time.Since(start)
	})
	return blocked
}

// Close records the call. It does not affect the token.
func (s *Signal) Close() error {
	s.closed.Add(1)
	return nil
}

// Closed reports how many times Close was called.
func (s *Signal) Closed() int {
	return int(s.closed.Load())
}
