package config

// HostConfig is the root configuration for jobhost.
type HostConfig struct {
	Shutdown ShutdownSection `koanf:"shutdown" yaml:"shutdown" json:"shutdown"`
	Log      LogSection      `koanf:"log" yaml:"log" json:"log"`
	HTTP     HTTPSection     `koanf:"http" yaml:"http" json:"http"`
	Metrics  MetricsSection  `koanf:"metrics" yaml:"metrics" json:"metrics"`
}

// ShutdownSection configures the shutdown sources.
type ShutdownSection struct {
	// FileEnv names the environment variable holding the shutdown file path.
	FileEnv string `koanf:"file_env" yaml:"file_env" json:"file_env"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}

// HTTPSection configures the server hosted by "jobhost serve".
type HTTPSection struct {
	Addr string `koanf:"addr" yaml:"addr" json:"addr"`

	// RateLimit is the per-client request rate per second. Zero disables it.
	RateLimit int `koanf:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled" yaml:"enabled" json:"enabled"`
}
