package job

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/yndnr/jobhost/internal/telemetry/logger"
)

// DefaultWaitDelay is how long an interrupted child may take to exit before
// it is killed. It fits inside host.GracePeriod.
const DefaultWaitDelay = 3 * time.Second

// ErrNoCommand is returned by Run when Path is empty.
var ErrNoCommand = errors.New("job: no command")

// Command describes an external command.
type Command struct {
	Path string
	Args []string
	Dir  string

	// Env is appended to the current environment.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// WaitDelay defaults to DefaultWaitDelay.
	WaitDelay time.Duration
}

// Run starts the command and waits for it. Cancelling ctx interrupts the
// child; a child that then exits with status 0 counts as success. Other
// errors from the child are returned unchanged.
func (c *Command) Run(ctx context.Context) error {
	if c.Path == "" {
		return ErrNoCommand
	}
	log := logger.L(ctx)

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.WaitDelay = c.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	cmd.Cancel = func() error {
		log.Info("interrupting command", "pid", cmd.Process.Pid)
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	log.Info("command started",
		"pid", cmd.Process.Pid,
		"args", logger.RedactArgs(append([]string{c.Path}, c.Args...)),
	)

	start := time.Now()
	err := cmd.Wait()
	if err != nil && errors.Is(err, ctx.Err()) &&
		cmd.ProcessState != nil && cmd.ProcessState.Success() {
		// The child handled the interrupt and exited cleanly.
		err = nil
	}
	log.Info("command exited",
		"pid", cmd.Process.Pid,
		"exit_code", ExitCode(err),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return err
}

// ExitCode maps a Run error to a process exit status: 0 for nil, the
// child's status for an exit error, 128+signal for a child killed by a
// signal and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return 1
	}
	if code, ok := signalExitCode(ee); ok {
		return code
	}
	if code := ee.ExitCode(); code > 0 {
		return code
	}
	return 1
}
