package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/jobhost/internal/infra/shutdown"
	"github.com/yndnr/jobhost/internal/infra/shutdown/shutdowntest"
)

const testFileEnv = "JOBHOST_TEST_SHUTDOWN_FILE"

func TestBuilder_ExternalCancellation(t *testing.T) {
	t.Setenv(testFileEnv, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewBuilder().
		SetExternalCancellation(ctx).
		WithSignalFileEnv(testFileEnv).
		WithTerminateHook(nil).
		Build()
	defer h.Close()

	if h.Context().Err() != nil {
		t.Fatal("host cancelled before any signal")
	}
	cancel()
	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("external cancellation did not reach the host")
	}
	if src := shutdown.Source(context.Cause(h.Context())); src != "" {
		t.Errorf("Source() = %q, want empty for a plain external cancel", src)
	}
}

func TestBuilder_ShutdownFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shutdown")
	t.Setenv(testFileEnv, path)

	h := NewBuilder().
		WithSignalFileEnv(testFileEnv).
		WithTerminateHook(nil).
		Build()
	defer h.Close()

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	select {
	case <-h.Context().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown file did not cancel the host")
	}
	if src := shutdown.Source(context.Cause(h.Context())); src != shutdown.SourceSignalFile {
		t.Errorf("Source() = %q, want %q", src, shutdown.SourceSignalFile)
	}
}

func TestBuilder_ExtraSignal(t *testing.T) {
	t.Setenv(testFileEnv, "")
	sig := shutdowntest.New()

	h := NewBuilder().
		WithSignalFileEnv(testFileEnv).
		WithTerminateHook(nil).
		WithSignal(sig).
		Build()

	sig.Fire()
	if h.Context().Err() == nil {
		t.Error("extra signal did not cancel the host")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if sig.Closed() != 1 {
		t.Errorf("extra signal closed %d times, want 1", sig.Closed())
	}
}

func TestServiceBuilder(t *testing.T) {
	t.Setenv(testFileEnv, "")

	if _, err := NewServiceBuilder().Build(); !errors.Is(err, ErrNilService) {
		t.Errorf("Build() without service error = %v, want %v", err, ErrNilService)
	}

	sig := shutdowntest.New()
	sh, err := NewServiceBuilder().
		HostService(&fakeService{}).
		WithSignalFileEnv(testFileEnv).
		WithTerminateHook(nil).
		WithSignal(sig).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer sh.Close()

	sig.Fire()
	if err := sh.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
