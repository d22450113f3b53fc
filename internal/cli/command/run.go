package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobhost/internal/core/host"
	"github.com/yndnr/jobhost/internal/core/job"
	"github.com/yndnr/jobhost/internal/telemetry/logger"
	"github.com/yndnr/jobhost/internal/telemetry/metric"
)

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a command, interrupting it when shutdown is requested",
		ArgsUsage: "[--] COMMAND [ARGS...]",
		Description: "The command is interrupted when the shutdown file appears, on SIGTERM\n" +
			"or on Ctrl+C, and killed if it has not exited after --wait-delay.\n" +
			"jobhost exits with the command's status.",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "wait-delay",
				Usage: "How long an interrupted command may take to exit",
				Value: job.DefaultWaitDelay,
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return cli.Exit("run: missing command", 2)
	}
	cfg := configFrom(c)

	h := host.NewBuilder().
		SetExternalCancellation(c.Context).
		WithSignalFileEnv(cfg.Shutdown.FileEnv).
		WithLogger(logger.Default()).
		WithMetrics(metricsFor(cfg.Metrics.Enabled)).
		Build()
	defer h.Close()

	cmd := &job.Command{
		Path:      args[0],
		Args:      args[1:],
		Stdin:     c.App.Reader,
		Stdout:    c.App.Writer,
		Stderr:    c.App.ErrWriter,
		WaitDelay: c.Duration("wait-delay"),
	}

	if err := h.Run(cmd.Run); err != nil {
		return cli.Exit(fmt.Sprintf("run: %v", err), job.ExitCode(err))
	}
	return nil
}

func metricsFor(enabled bool) *metric.Registry {
	if !enabled {
		return nil
	}
	return metric.Global()
}
