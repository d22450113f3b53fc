package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/yndnr/jobhost/internal/infra/shutdown"
	"github.com/yndnr/jobhost/internal/infra/shutdown/shutdowntest"
	"github.com/yndnr/jobhost/internal/telemetry/logger"
	"github.com/yndnr/jobhost/internal/telemetry/metric"
)

// doer loops in steps, stopping early when the context is cancelled.
type doer struct {
	loops int
	step  time.Duration
	done  atomic.Int32
}

func (d *doer) do(ctx context.Context) error {
	for range d.loops {
		if ctx.Err() != nil {
			return nil
		}
		time.Sleep(d.step)
		d.done.Add(1)
	}
	return nil
}

func newTestHost(t *testing.T) (*JobHost, *shutdowntest.Signal) {
	t.Helper()
	sig := shutdowntest.New()
	h := New(Config{Signals: []shutdown.Signal{sig}})
	t.Cleanup(func() { _ = h.Close() })
	return h, sig
}

func TestJobHost_RunsToCompletion(t *testing.T) {
	defer goleak.VerifyNone(t)

	h, _ := newTestHost(t)
	d := &doer{loops: 10, step: 10 * time.Millisecond}

	if err := h.Run(d.do); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := d.done.Load(); got != 10 {
		t.Errorf("completed %d loops, want 10", got)
	}
	if h.Busy() {
		t.Error("host busy after Run returned")
	}
	_ = h.Close()
}

func TestJobHost_CancelledMidflight(t *testing.T) {
	h, sig := newTestHost(t)
	d := &doer{loops: 10, step: 100 * time.Millisecond}

	blocked := sig.FireAfter(500 * time.Millisecond)
	start := time.Now()
	if err := h.Run(d.do); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	elapsed := time.Since(start)

	if got := d.done.Load(); got < 3 || got > 7 {
		t.Errorf("completed %d loops, want about 5", got)
	}
	if elapsed > 900*time.Millisecond {
		t.Errorf("Run took %v after mid-flight cancel", elapsed)
	}

	// The firing goroutine waits for the run to return before moving on.
	if b := <-blocked; b > GracePeriod {
		t.Errorf("Fire blocked %v, longer than the grace period", b)
	}
	if cause := context.Cause(h.Context()); shutdown.Source(cause) != shutdowntest.Source {
		t.Errorf("Cause() = %v, want source %q", cause, shutdowntest.Source)
	}
}

func TestJobHost_AlreadyCancelled(t *testing.T) {
	h, sig := newTestHost(t)
	sig.Fire()

	var called, sawCancel bool
	err := h.Run(func(ctx context.Context) error {
		called = true
		sawCancel = ctx.Err() != nil
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Error("work not called after shutdown")
	}
	if !sawCancel {
		t.Error("work did not observe the cancelled token")
	}
}

func TestJobHost_ErrorPropagates(t *testing.T) {
	h, _ := newTestHost(t)
	want := errors.New("boom")

	err := h.Run(func(context.Context) error { return want })
	if err != want {
		t.Errorf("Run() error = %v, want %v unchanged", err, want)
	}
	if h.Busy() {
		t.Error("host busy after failed run")
	}
}

func TestJobHost_PanicReleasesGate(t *testing.T) {
	h, _ := newTestHost(t)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = h.Run(func(context.Context) error { panic("boom") })
	}()

	if h.Busy() {
		t.Error("host busy after panicking run")
	}
}

func TestJobHost_GraceWaitsForWork(t *testing.T) {
	h, sig := newTestHost(t)

	started := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		_ = h.Run(func(context.Context) error {
			close(started)
			time.Sleep(500 * time.Millisecond) // ignores the token
			return nil
		})
		close(finished)
	}()
	<-started

	start := time.Now()
	sig.Fire()
	waited := time.Since(start)

	select {
	case <-finished:
	default:
		t.Error("Fire returned before the running work finished")
	}
	if waited < 400*time.Millisecond || waited > 2*time.Second {
		t.Errorf("Fire blocked %v, want about 500ms", waited)
	}
}

func TestJobHost_GraceIsBounded(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the full grace period")
	}
	h, sig := newTestHost(t)

	started := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		_ = h.Run(func(context.Context) error {
			close(started)
			time.Sleep(6 * time.Second)
			return nil
		})
		close(finished)
	}()
	<-started

	start := time.Now()
	sig.Fire()
	waited := time.Since(start)

	if waited < GracePeriod-100*time.Millisecond || waited > GracePeriod+time.Second {
		t.Errorf("Fire blocked %v, want about %v", waited, GracePeriod)
	}
	if !h.Busy() {
		t.Error("work reported finished before it returned")
	}
	<-finished
}

func TestJobHost_GraceLogInMilliseconds(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}
	sig := shutdowntest.New()
	h := New(Config{Signals: []shutdown.Signal{sig}, Logger: l})
	defer h.Close()

	sig.Fire()

	var released map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if entry["msg"] == "running work finished, releasing shutdown" {
			released = entry
		}
	}
	if released == nil {
		t.Fatalf("release not logged, got:\n%s", buf.String())
	}
	waited, ok := released["waited_ms"].(float64)
	if !ok {
		t.Fatalf("waited_ms = %v, want a number", released["waited_ms"])
	}
	if waited > 500 {
		t.Errorf("waited_ms = %v with nothing running", waited)
	}
}

func TestJobHost_SignalAfterRun(t *testing.T) {
	h, sig := newTestHost(t)
	if err := h.Run(func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	start := time.Now()
	sig.Fire()
	if waited := time.Since(start); waited > 500*time.Millisecond {
		t.Errorf("Fire blocked %v with nothing running", waited)
	}
	if h.Context().Err() == nil {
		t.Error("host context not cancelled after fire")
	}
}

func TestJobHost_AnySignalCancels(t *testing.T) {
	sigs := []*shutdowntest.Signal{shutdowntest.New(), shutdowntest.New()}
	h := New(Config{Signals: []shutdown.Signal{sigs[0], sigs[1]}})
	defer h.Close()

	sigs[1].Fire()
	if h.Context().Err() == nil {
		t.Fatal("second signal did not cancel the host context")
	}

	// The other signal is unaffected and can still fire.
	if sigs[0].Context().Err() != nil {
		t.Error("first signal cancelled by the second")
	}
	sigs[0].Fire()
}

func TestRunValue(t *testing.T) {
	h, _ := newTestHost(t)

	got, err := RunValue(h, func(ctx context.Context) (int, error) {
		if logger.RunIDFromContext(ctx) == "" {
			t.Error("run context carries no run ID")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("RunValue() error = %v", err)
	}
	if got != 42 {
		t.Errorf("RunValue() = %d, want 42", got)
	}
}

func TestRunValue_DistinctRunIDs(t *testing.T) {
	h, _ := newTestHost(t)

	ids := make(map[string]bool)
	for range 5 {
		id, _ := RunValue(h, func(ctx context.Context) (string, error) {
			return logger.RunIDFromContext(ctx), nil
		})
		ids[id] = true
	}
	if len(ids) != 5 {
		t.Errorf("got %d distinct run IDs, want 5", len(ids))
	}
}

func TestJobHost_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	sig := shutdowntest.New()
	h := New(Config{Signals: []shutdown.Signal{sig}, Metrics: reg})
	defer h.Close()

	_ = h.Run(func(context.Context) error { return nil })
	_ = h.Run(func(context.Context) error { return errors.New("boom") })
	sig.Fire()
	_ = h.Run(func(context.Context) error { return nil })

	tests := []struct {
		outcome string
		want    float64
	}{
		{metric.OutcomeSuccess, 1},
		{metric.OutcomeError, 1},
		{metric.OutcomeCancelled, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(reg.RunsTotal.WithLabelValues(tt.outcome)); got != tt.want {
			t.Errorf("runs_total{outcome=%q} = %v, want %v", tt.outcome, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(reg.SignalsFired.WithLabelValues(shutdowntest.Source)); got != 1 {
		t.Errorf("signals_fired_total{source=test} = %v, want 1", got)
	}
}

func TestJobHost_CloseIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	sig := shutdowntest.New()
	h := New(Config{Signals: []shutdown.Signal{sig}})

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if got := sig.Closed(); got != 1 {
		t.Errorf("signal closed %d times, want 1", got)
	}
	if h.Context().Err() != nil {
		t.Error("Close cancelled the host context")
	}
}

func TestJobHost_CloseReleasesGrace(t *testing.T) {
	h, sig := newTestHost(t)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = h.Run(func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	blocked := sig.FireAfter(0)
	time.Sleep(50 * time.Millisecond)
	_ = h.Close()

	select {
	case b := <-blocked:
		if b > time.Second {
			t.Errorf("Fire blocked %v after Close", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not release the grace wait")
	}
}
