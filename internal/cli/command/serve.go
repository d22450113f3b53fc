package command

import (
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobhost/internal/config"
	"github.com/yndnr/jobhost/internal/core/host"
	"github.com/yndnr/jobhost/internal/infra/confloader"
	"github.com/yndnr/jobhost/internal/server/httpserver"
	"github.com/yndnr/jobhost/internal/telemetry/logger"
)

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve health, readiness and metrics until shutdown is requested",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides http.addr)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg := configFrom(c)
	addr := cfg.HTTP.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	reg := metricsFor(cfg.Metrics.Enabled)

	srv := httpserver.New(httpserver.Config{
		Addr:      addr,
		Metrics:   reg,
		Logger:    slog.Default(),
		RateLimit: cfg.HTTP.RateLimit,
	})

	sh, err := host.NewServiceBuilder().
		HostService(srv).
		SetExternalCancellation(c.Context).
		WithSignalFileEnv(cfg.Shutdown.FileEnv).
		WithLogger(logger.Default()).
		WithMetrics(reg).
		Build()
	if err != nil {
		return err
	}
	defer sh.Close()

	if stop := watchConfig(loaderFrom(c)); stop != nil {
		defer stop()
	}

	logger.Info("serving", "addr", addr, "metrics", reg != nil)
	return sh.Run(c.Context)
}

// watchConfig reapplies the log level when the configuration file changes.
// It returns nil when there is no file to watch.
func watchConfig(loader *confloader.Loader) func() {
	path := loader.FilePath()
	if path == "" {
		return nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(slog.Default()))
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil
	}

	w.OnChange(func(string) {
		cfg, err := config.Load(loader)
		if err != nil {
			logger.Warn("config reload failed, keeping current settings", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			logger.Info("log level changed", "level", logger.GetLevel())
		}
	})
	w.Start()

	return func() { _ = w.Stop() }
}
