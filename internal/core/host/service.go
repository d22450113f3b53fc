package host

import (
	"context"
	"errors"
	"time"
)

// PollInterval is how often a ServiceHost checks for shutdown while the
// service runs.
const PollInterval = time.Second

// ErrNilService is returned when a ServiceHost is built without a service.
var ErrNilService = errors.New("host: service is nil")

// Service is a component with a start/stop lifecycle.
type Service interface {
	// Start begins serving. It should return once the service is running.
	Start(ctx context.Context) error

	// Stop releases the service.
	Stop(ctx context.Context) error
}

// ServiceHost runs a Service under a JobHost: the service is started, kept
// running until shutdown is requested, then stopped.
type ServiceHost struct {
	job     *JobHost
	service Service
}

// NewServiceHost wraps svc. The JobHost is built from cfg as in New.
func NewServiceHost(svc Service, cfg Config) (*ServiceHost, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	return &ServiceHost{
		job:     New(cfg),
		service: svc,
	}, nil
}

// JobHost returns the underlying JobHost.
func (s *ServiceHost) JobHost() *JobHost {
	return s.job
}

// Run starts the service with ctx and blocks until shutdown is requested,
// then stops it. If shutdown was requested before Run, the service is never
// started. Start errors are returned unchanged and Stop is then skipped.
func (s *ServiceHost) Run(ctx context.Context) error {
	return s.job.Run(func(token context.Context) error {
		if token.Err() != nil {
			return nil
		}

		if err := s.service.Start(ctx); err != nil {
			return err
		}

		ticker := time.NewTicker(PollInterval)
		defer ticker.Stop()
		for token.Err() == nil {
			<-ticker.C
		}

		return s.service.Stop(context.WithoutCancel(ctx))
	})
}

// Close closes the underlying JobHost.
func (s *ServiceHost) Close() error {
	return s.job.Close()
}
