package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobhost/internal/config"
	"github.com/yndnr/jobhost/internal/infra/buildinfo"
	"github.com/yndnr/jobhost/internal/infra/confloader"
	"github.com/yndnr/jobhost/internal/telemetry/logger"
)

const (
	metaConfig = "config"
	metaLoader = "loader"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "jobhost",
		Usage:   "Run jobs and services that shut down gracefully",
		Version: buildinfo.Get().Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(),
			ServeCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: setup,
	}
}

// globalFlags returns the global CLI flags. Flags left empty fall back to
// JOBHOST_* environment variables, then to the configuration file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML configuration file",
			EnvVars: []string{"JOBHOST_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: json, text",
		},
		&cli.StringFlag{
			Name:  "shutdown-file-env",
			Usage: "Environment variable naming the shutdown file",
		},
	}
}

// setup loads the configuration and installs the default logger.
func setup(c *cli.Context) error {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithFlags(map[string]any{
			"log.level":         c.String("log-level"),
			"log.format":        c.String("log-format"),
			"shutdown.file_env": c.String("shutdown-file-env"),
		}),
	)

	cfg, err := config.Load(loader)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return cli.Exit(err.Error(), 2)
		}
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLoader] = loader
	return nil
}

func configFrom(c *cli.Context) *config.HostConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.HostConfig); ok {
		return cfg
	}
	return config.Default()
}

func loaderFrom(c *cli.Context) *confloader.Loader {
	if l, ok := c.App.Metadata[metaLoader].(*confloader.Loader); ok {
		return l
	}
	return confloader.NewLoader()
}
