package host

import (
	"context"
	"log/slog"
	"os"

	"github.com/yndnr/jobhost/internal/infra/shutdown"
	"github.com/yndnr/jobhost/internal/telemetry/logger"
	"github.com/yndnr/jobhost/internal/telemetry/metric"
)

// Builder assembles a JobHost with the production shutdown sources: the
// shutdown file, OS signals and an optional external context.
type Builder struct {
	external  context.Context
	logger    logger.Logger
	metrics   *metric.Registry
	fileEnv   string
	terminate func(os.Signal)
	extra     []shutdown.Signal
}

// NewBuilder returns a Builder with production defaults: the shutdown file
// is read from WEBJOBS_SHUTDOWN_FILE and SIGTERM exits the process once the
// grace period is over.
func NewBuilder() *Builder {
	return &Builder{
		fileEnv:   shutdown.DefaultShutdownFileEnv,
		terminate: shutdown.ExitOnTerminate,
	}
}

// SetExternalCancellation adds ctx as a shutdown source.
func (b *Builder) SetExternalCancellation(ctx context.Context) *Builder {
	b.external = ctx
	return b
}

// WithLogger sets the host logger.
func (b *Builder) WithLogger(l logger.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetrics sets the metrics registry.
func (b *Builder) WithMetrics(m *metric.Registry) *Builder {
	b.metrics = m
	return b
}

// WithSignalFileEnv changes the environment variable naming the shutdown file.
func (b *Builder) WithSignalFileEnv(name string) *Builder {
	b.fileEnv = name
	return b
}

// WithTerminateHook replaces what happens after a SIGTERM has been handled.
// nil keeps the process running.
func (b *Builder) WithTerminateHook(fn func(os.Signal)) *Builder {
	b.terminate = fn
	return b
}

// WithSignal adds another shutdown source.
func (b *Builder) WithSignal(sig shutdown.Signal) *Builder {
	b.extra = append(b.extra, sig)
	return b
}

func (b *Builder) config() Config {
	var signals []shutdown.Signal
	if b.external != nil {
		signals = append(signals, shutdown.External(b.external))
	}
	signals = append(signals,
		shutdown.NewFileSignal(
			shutdown.WithEnvVar(b.fileEnv),
			shutdown.WithLogger(slog.Default()),
		),
		shutdown.NewOSSignal(
			shutdown.WithTerminateHook(b.terminate),
			shutdown.WithLogger(slog.Default()),
		),
	)
	signals = append(signals, b.extra...)

	return Config{
		Signals: signals,
		Logger:  b.logger,
		Metrics: b.metrics,
	}
}

// Build creates the JobHost. The caller must Close it.
func (b *Builder) Build() *JobHost {
	return New(b.config())
}

// ServiceBuilder assembles a ServiceHost.
type ServiceBuilder struct {
	b       *Builder
	service Service
}

// NewServiceBuilder returns a ServiceBuilder with the same defaults as
// NewBuilder.
func NewServiceBuilder() *ServiceBuilder {
	return &ServiceBuilder{b: NewBuilder()}
}

// HostService sets the service to run.
func (sb *ServiceBuilder) HostService(svc Service) *ServiceBuilder {
	sb.service = svc
	return sb
}

// SetExternalCancellation adds ctx as a shutdown source.
func (sb *ServiceBuilder) SetExternalCancellation(ctx context.Context) *ServiceBuilder {
	sb.b.SetExternalCancellation(ctx)
	return sb
}

// WithLogger sets the host logger.
func (sb *ServiceBuilder) WithLogger(l logger.Logger) *ServiceBuilder {
	sb.b.WithLogger(l)
	return sb
}

// WithMetrics sets the metrics registry.
func (sb *ServiceBuilder) WithMetrics(m *metric.Registry) *ServiceBuilder {
	sb.b.WithMetrics(m)
	return sb
}

// WithSignalFileEnv changes the environment variable naming the shutdown file.
func (sb *ServiceBuilder) WithSignalFileEnv(name string) *ServiceBuilder {
	sb.b.WithSignalFileEnv(name)
	return sb
}

// WithTerminateHook replaces what happens after a SIGTERM has been handled.
func (sb *ServiceBuilder) WithTerminateHook(fn func(os.Signal)) *ServiceBuilder {
	sb.b.WithTerminateHook(fn)
	return sb
}

// WithSignal adds another shutdown source.
func (sb *ServiceBuilder) WithSignal(sig shutdown.Signal) *ServiceBuilder {
	sb.b.WithSignal(sig)
	return sb
}

// Build creates the ServiceHost. It fails without a service, before any
// shutdown source is opened.
func (sb *ServiceBuilder) Build() (*ServiceHost, error) {
	if sb.service == nil {
		return nil, ErrNilService
	}
	return NewServiceHost(sb.service, sb.b.config())
}
