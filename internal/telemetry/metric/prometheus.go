package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobhost"

// Run outcomes used as the "outcome" label.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
	OutcomePanic     = "panic"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	RunsInFlight  prometheus.Gauge
	SignalsFired  *prometheus.CounterVec
	GraceWait     prometheus.Histogram
	GraceTimeouts prometheus.Counter
}

// NewRegistry creates a registry with the jobhost metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newRegistry(reg)
}

func newRegistry(reg *prometheus.Registry) *Registry {
	f := promauto.With(reg)
	return &Registry{
		reg: reg,
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of protected runs, by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of protected runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10), // 10ms to ~43m
			},
			[]string{"outcome"},
		),
		RunsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "runs_in_flight",
				Help:      "Number of protected runs currently executing",
			},
		),
		SignalsFired: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signals_fired_total",
				Help:      "Shutdown signals fired, by source",
			},
			[]string{"source"},
		),
		GraceWait: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grace_wait_seconds",
				Help:      "Time a shutdown signal waited for in-flight runs",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 3, 4, 5},
			},
		),
		GraceTimeouts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grace_timeouts_total",
				Help:      "Grace waits that ended with runs still executing",
			},
		),
	}
}

// RunStarted records a run entering the host.
func (r *Registry) RunStarted() {
	if r == nil {
		return
	}
	r.RunsInFlight.Inc()
}

// RunFinished records a run leaving the host.
func (r *Registry) RunFinished(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.RunsInFlight.Dec()
	r.RunsTotal.WithLabelValues(outcome).Inc()
	r.RunDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// SignalFired records a shutdown source firing.
func (r *Registry) SignalFired(source string) {
	if r == nil {
		return
	}
	r.SignalsFired.WithLabelValues(source).Inc()
}

// ObserveGraceWait records how long a firing source waited and whether the
// host was idle when the wait ended.
func (r *Registry) ObserveGraceWait(d time.Duration, idle bool) {
	if r == nil {
		return
	}
	r.GraceWait.Observe(d.Seconds())
	if !idle {
		r.GraceTimeouts.Inc()
	}
}

// Gatherer returns the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// Handler returns an HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry, created on first use.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}
