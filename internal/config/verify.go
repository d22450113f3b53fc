package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/jobhost/internal/telemetry/logger"
)

// ErrInvalidConfig is wrapped by every Verify error.
var ErrInvalidConfig = errors.New("invalid config")

// Verify validates the configuration.
func Verify(cfg *HostConfig) error {
	var errs []error
	if cfg.Shutdown.FileEnv == "" {
		errs = append(errs, errors.New("shutdown.file_env is required"))
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logger.ParseFormat(cfg.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	if err := verifyAddr(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("http.addr: %w", err))
	}
	if cfg.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("http.rate_limit must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func verifyAddr(addr string) error {
	if addr == "" {
		return errors.New("is required")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return err
	}
	return nil
}
