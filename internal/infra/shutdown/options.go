package shutdown

import (
	"log/slog"
	"os"
)

// Option configures a FileSignal or an OSSignal.
type Option func(*options)

type options struct {
	envVar    string
	path      string
	logger    *slog.Logger
	terminate func(os.Signal)
	notifier  *notifier
}

func newOptions(opts []Option) *options {
	o := &options{
		envVar:   DefaultShutdownFileEnv,
		logger:   slog.Default(),
		notifier: processNotifier,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEnvVar reads the shutdown file path from the named environment variable.
func WithEnvVar(name string) Option {
	return func(o *options) {
		o.envVar = name
	}
}

// WithPath sets the shutdown file path directly, bypassing the environment.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTerminateHook sets the function an OSSignal calls once every listener
// has handled a terminate signal. Without a hook the process keeps running
// and the caller decides when to exit.
func WithTerminateHook(fn func(os.Signal)) Option {
	return func(o *options) {
		o.terminate = fn
	}
}

// withNotifier replaces the process-wide notifier (tests).
func withNotifier(n *notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}
