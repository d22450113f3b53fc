package host

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/jobhost/internal/infra/shutdown"
	"github.com/yndnr/jobhost/internal/telemetry/logger"
	"github.com/yndnr/jobhost/internal/telemetry/metric"
)

// GracePeriod is how long a firing shutdown source waits for in-flight work
// to return before letting the process go on terminating.
const GracePeriod = 4 * time.Second

// Config holds the collaborators of a JobHost.
type Config struct {
	// Signals are the termination sources. The JobHost takes ownership and
	// closes them in Close.
	Signals []shutdown.Signal

	// Logger defaults to logger.Default().
	Logger logger.Logger

	// Metrics may be nil.
	Metrics *metric.Registry
}

// JobHost runs protected work under the logical OR of its shutdown signals.
type JobHost struct {
	signals []shutdown.Signal
	logger  logger.Logger
	metrics *metric.Registry

	ctx     context.Context
	cancel  context.CancelCauseFunc
	release ReleaseFunc
	gate    *Gate

	closeOnce sync.Once
}

// New links cfg.Signals and wires each one to wait for in-flight work when
// it fires.
func New(cfg Config) *JobHost {
	h := &JobHost{
		signals: cfg.Signals,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		gate:    NewGate(),
	}
	if h.logger == nil {
		h.logger = logger.Default()
	}

	ctxs := make([]context.Context, 0, len(h.signals))
	for _, sig := range h.signals {
		ctxs = append(ctxs, sig.Context())
	}
	linked, release := Link(ctxs...)
	h.ctx, h.cancel = context.WithCancelCause(linked)
	h.release = release

	for _, sig := range h.signals {
		sig.OnFire(func() {
			// Cancel on the firing goroutine so work started after the
			// signal returns observes it.
			h.cancel(context.Cause(sig.Context()))
			h.shutdown(sig)
		})
	}
	return h
}

// shutdown runs on the goroutine that delivered sig. The signal's own
// context is already cancelled, which cascades into the linked context.
func (h *JobHost) shutdown(sig shutdown.Signal) {
	source := shutdown.Source(context.Cause(sig.Context()))
	if source == "" {
		source = shutdown.SourceExternal
	}
	h.metrics.SignalFired(source)

	inFlight := h.gate.InFlight()
	h.logger.Info("shutdown signal received, waiting for running work",
		"source", source,
		"in_flight", inFlight,
		"grace_period_ms", GracePeriod.Milliseconds(),
	)

	start := time.Now()
	idle := h.gate.WaitIdle(GracePeriod)
	waited := time.Since(start)
	h.metrics.ObserveGraceWait(waited, idle)

	if idle {
		h.logger.Info("running work finished, releasing shutdown",
			"source", source,
			"waited_ms", waited.Milliseconds(),
		)
		return
	}
	h.logger.Warn("grace period elapsed with work still running",
		"source", source,
		"in_flight", h.gate.InFlight(),
	)
}

// Context returns the linked shutdown context.
func (h *JobHost) Context() context.Context {
	return h.ctx
}

// Busy reports whether work is running under Run.
func (h *JobHost) Busy() bool {
	return h.gate.Busy()
}

// Run calls fn with the linked shutdown context and returns its error
// unchanged. fn is called even if shutdown was already requested; it is
// expected to check ctx itself.
func (h *JobHost) Run(fn func(ctx context.Context) error) error {
	_, err := RunValue(h, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RunValue is Run for work that produces a value.
func RunValue[T any](h *JobHost, fn func(ctx context.Context) (T, error)) (result T, err error) {
	runID := ulid.Make().String()
	ctx := logger.WithRunID(logger.WithLogger(h.ctx, h.logger), runID)
	log := logger.L(ctx)

	h.gate.Enter()
	h.metrics.RunStarted()
	start := time.Now()
	log.Debug("run started", "cancelled", h.ctx.Err() != nil)

	returned := false
	defer func() {
		outcome := metric.OutcomePanic
		if returned {
			outcome = outcomeOf(err, h.ctx)
		}
		elapsed := time.Since(start)
		h.gate.Exit()
		h.metrics.RunFinished(outcome, elapsed)
		log.Debug("run finished", "outcome", outcome, "duration_ms", elapsed.Milliseconds())
	}()

	result, err = fn(ctx)
	returned = true
	return result, err
}

func outcomeOf(err error, ctx context.Context) string {
	switch {
	case err != nil:
		return metric.OutcomeError
	case ctx.Err() != nil:
		return metric.OutcomeCancelled
	default:
		return metric.OutcomeSuccess
	}
}

// Close closes every signal, detaches the linked context and releases any
// grace wait still blocked. Calls after the first return nil.
func (h *JobHost) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.gate.Close()

		var errs []error
		for _, sig := range h.signals {
			if cerr := sig.Close(); cerr != nil {
				errs = append(errs, cerr)
			}
		}
		h.release()
		err = errors.Join(errs...)
	})
	return err
}
