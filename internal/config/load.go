package config

import (
	"fmt"

	"github.com/yndnr/jobhost/internal/infra/confloader"
)

// Load reads the configuration from loader over the defaults and verifies it.
func Load(loader *confloader.Loader) (*HostConfig, error) {
	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
