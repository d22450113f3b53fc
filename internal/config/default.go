package config

import "github.com/yndnr/jobhost/internal/infra/shutdown"

// Default configuration values.
const (
	DefaultHTTPAddr  = "127.0.0.1:5080"
	DefaultRateLimit = 100
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default configuration.
func Default() *HostConfig {
	return &HostConfig{
		Shutdown: ShutdownSection{
			FileEnv: shutdown.DefaultShutdownFileEnv,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		HTTP: HTTPSection{
			Addr:      DefaultHTTPAddr,
			RateLimit: DefaultRateLimit,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}
}
