// Package host runs protected work under a unified shutdown signal.
//
// A JobHost links several termination sources (an external context, the
// shutdown file, OS signals) into one context and hands it to the work
// passed to Run. When a source fires, its delivery path blocks for up to
// GracePeriod waiting for running work to return, then proceeds regardless:
//
//	h := host.NewBuilder().SetExternalCancellation(ctx).Build()
//	defer h.Close()
//
//	err := h.Run(func(ctx context.Context) error {
//	    for ctx.Err() == nil {
//	        doSomeWork()
//	    }
//	    return nil
//	})
//
// Cancellation is cooperative. Work that ignores its context keeps running
// after the grace period; only the waiting signal path gives up.
//
// ServiceHost adapts a Start/Stop service to the same discipline.
package host
