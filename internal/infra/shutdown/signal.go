package shutdown

import (
	"context"
	"errors"
	"sync"
)

// ErrShutdownRequested is the cancellation cause of every fired signal.
// Use errors.Is on context.Cause to tell a shutdown from other cancellations.
var ErrShutdownRequested = errors.New("shutdown requested")

// Source names used in cancellation causes, logs and metrics.
const (
	SourceExternal   = "external"
	SourceSignalFile = "signal-file"
	SourceInterrupt  = "interrupt"
	SourceTerminate  = "terminate"
)

// Signal is a single termination source.
type Signal interface {
	// Context returns the token cancelled when the signal fires.
	// Inert signals return a context whose Done channel is nil.
	Context() context.Context

	// OnFire registers fn to run once, after the token is cancelled.
	// If the signal already fired, fn runs immediately on the caller.
	OnFire(fn func())

	// Close unsubscribes from the underlying event source.
	// Events arriving after Close are ignored. Close may be called repeatedly.
	Close() error
}

// Cause builds the cancellation cause recorded for source.
func Cause(source string) error {
	return &sourceError{source: source}
}

// Source extracts the source name from a cancellation cause built by Cause.
// Returns "" for causes that are not shutdown requests.
func Source(cause error) string {
	var se *sourceError
	if errors.As(cause, &se) {
		return se.source
	}
	return ""
}

type sourceError struct {
	source string
}

func (e *sourceError) Error() string {
	return ErrShutdownRequested.Error() + ": " + e.source
}

func (e *sourceError) Unwrap() error { return ErrShutdownRequested }

// trigger is the fire-once core shared by the concrete signals.
type trigger struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu        sync.Mutex
	fired     bool
	callbacks []func()
}

func newTrigger() *trigger {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &trigger{ctx: ctx, cancel: cancel}
}

// fire cancels the context and runs the callbacks on the calling goroutine.
// Only the first call has any effect; it reports whether this call fired.
func (t *trigger) fire(source string) bool {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	t.cancel(Cause(source))
	callbacks := t.callbacks
	t.callbacks = nil
	t.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return true
}

func (t *trigger) onFire(fn func()) {
	t.mu.Lock()
	if !t.fired {
		t.callbacks = append(t.callbacks, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	fn()
}

func (t *trigger) hasFired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
