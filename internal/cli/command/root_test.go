package command

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/jobhost/internal/telemetry/logger"
)

// newTestApp returns the app with captured output and exit handling
// disabled. The returned buffers hold stdout and stderr.
func newTestApp(t *testing.T) (*cli.App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("JOBHOST_CONFIG", "")
	t.Setenv("JOBHOST_TEST_SHUTDOWN_FILE", "")

	prev := logger.Default()
	t.Cleanup(func() {
		logger.SetDefault(prev)
		logger.SetLevel("info")
	})

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader("")
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app, &stdout, &stderr
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if err != nil {
		return 1
	}
	return 0
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "jobhost" {
		t.Errorf("Name = %q, want %q", app.Name, "jobhost")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}
	for _, name := range []string{"run", "serve", "config", "version"} {
		if !commandNames[name] {
			t.Errorf("missing command: %s", name)
		}
	}

	flagNames := make(map[string]bool)
	for _, flag := range app.Flags {
		flagNames[flag.Names()[0]] = true
	}
	for _, name := range []string{"config", "log-level", "log-format", "shutdown-file-env"} {
		if !flagNames[name] {
			t.Errorf("missing flag: %s", name)
		}
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	app, _, _ := newTestApp(t)

	err := app.Run([]string{"jobhost", "--log-level", "loud", "version"})
	if got := exitCode(err); got != 2 {
		t.Errorf("exit code = %d (%v), want 2", got, err)
	}
}

func TestSetup_MissingConfigFile(t *testing.T) {
	app, _, _ := newTestApp(t)

	err := app.Run([]string{"jobhost", "--config", "/nonexistent/jobhost.yaml", "version"})
	if err == nil {
		t.Error("Run() succeeded with a missing config file")
	}
}

func TestSetup_LogLevelFlag(t *testing.T) {
	app, _, _ := newTestApp(t)

	if err := app.Run([]string{"jobhost", "--log-level", "debug", "version"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := logger.GetLevel(); got != "debug" {
		t.Errorf("log level = %q, want debug", got)
	}
}

func TestConfigCommand(t *testing.T) {
	app, stdout, _ := newTestApp(t)
	path := writeFile(t, "jobhost.yaml", "http:\n  addr: \"127.0.0.1:9999\"\n")

	err := app.Run([]string{"jobhost", "-c", path, "--shutdown-file-env", "MY_FILE", "config", "-o", "yaml"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"addr: 127.0.0.1:9999", "file_env: MY_FILE", "level: info"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q, got:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"text", "Go version:"},
		{"json", `"go_version"`},
		{"yaml", "go_version:"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			app, stdout, _ := newTestApp(t)
			if err := app.Run([]string{"jobhost", "version", "-o", tt.format}); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("output missing %q, got:\n%s", tt.want, stdout.String())
			}
		})
	}
}

func TestVersionCommand_BadFormat(t *testing.T) {
	app, _, _ := newTestApp(t)
	err := app.Run([]string{"jobhost", "version", "-o", "xml"})
	if got := exitCode(err); got != 2 {
		t.Errorf("exit code = %d, want 2", got)
	}
}
