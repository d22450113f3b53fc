package shutdown

import (
	"context"
	"log/slog"
	"os"
)

// OSSignal fires on the process-termination notification (SIGTERM) or on
// interrupt (Ctrl+C).
//
// While an OSSignal is open, interrupts no longer kill the process: the
// listener's callbacks run instead and the program decides when to stop.
// Terminate signals run the callbacks and then the terminate hook, if any.
type OSSignal struct {
	trig   *trigger
	sub    *subscription
	logger *slog.Logger
}

// NewOSSignal subscribes to the process-wide OS notifications.
func NewOSSignal(opts ...Option) *OSSignal {
	o := newOptions(opts)
	s := &OSSignal{
		trig:   newTrigger(),
		logger: o.logger,
	}
	s.trig.onFire(func() {
		s.logger.Info("shutdown requested by OS signal",
			"source", Source(context.Cause(s.trig.ctx)),
		)
	})
	s.sub = o.notifier.subscribe(
		func(os.Signal) { s.trig.fire(SourceTerminate) },
		func(os.Signal) { s.trig.fire(SourceInterrupt) },
		o.terminate,
		o.logger,
	)
	return s
}

// Context returns the token cancelled on the first termination notification.
func (s *OSSignal) Context() context.Context {
	return s.trig.ctx
}

// OnFire registers fn to run on the signal delivery goroutine.
func (s *OSSignal) OnFire(fn func()) {
	s.trig.onFire(fn)
}

// Close removes this listener's subscription. If a terminate signal is being
// delivered, Close waits until the delivery and the terminate hook are done.
// It must not be called from an OnFire callback.
func (s *OSSignal) Close() error {
	s.sub.close()
	return nil
}

// ExitOnTerminate is a terminate hook that exits the process with the
// conventional 128+signal status.
func ExitOnTerminate(sig os.Signal) {
	code := exitCode(sig)
	slog.Default().Warn("terminating after grace period",
		"signal", sig.String(),
		"exit_code", code,
	)
	os.Exit(code)
}
