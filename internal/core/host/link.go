package host

import (
	"context"
	"sync"
)

// ReleaseFunc detaches a linked context from its inputs.
type ReleaseFunc func()

// Link returns a context cancelled as soon as any of ctxs is.
//
// The cancellation cause of the first input to be cancelled is carried over.
// Inputs that can never be cancelled are ignored; an input that is already
// cancelled yields an already-cancelled result. The release function stops
// watching the inputs without cancelling the result and may be called more
// than once.
func Link(ctxs ...context.Context) (context.Context, ReleaseFunc) {
	linked, cancel := context.WithCancelCause(context.Background())

	var stops []func() bool
	for _, in := range ctxs {
		if in == nil || in.Done() == nil {
			continue
		}
		if in.Err() != nil {
			cancel(context.Cause(in))
			break
		}
		stops = append(stops, context.AfterFunc(in, func() {
			cancel(context.Cause(in))
		}))
	}

	var once sync.Once
	return linked, func() {
		once.Do(func() {
			for _, stop := range stops {
				stop()
			}
		})
	}
}
