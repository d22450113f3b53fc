package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/jobhost/internal/telemetry/metric"
)

// ShutdownTimeout bounds how long Stop waits for open requests. It is
// shorter than the host grace period so a stopped server never holds the
// grace wait to its limit.
const ShutdownTimeout = 3 * time.Second

// Config holds server configuration.
type Config struct {
	Addr string

	// Metrics enables GET /metrics when set.
	Metrics *metric.Registry

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// RateLimit is the per-client request rate per second. Zero disables it.
	RateLimit int
}

// Server is an HTTP server with a start/stop lifecycle.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	stopping   atomic.Bool

	mu       sync.Mutex
	listener net.Listener
	serveErr chan error
}

// New creates a server. Nothing is bound until Start.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	return s
}

// Start binds the listen address and serves in the background. Bind errors
// are returned. The server keeps running after ctx is cancelled; use Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("httpserver: already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	errc := make(chan error, 1)
	s.serveErr = errc

	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()

	s.logger.Info("http server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stopping reports whether Stop has been called.
func (s *Server) Stopping() bool {
	return s.stopping.Load()
}

// Stop marks the server not ready and shuts it down, waiting up to
// ShutdownTimeout for open requests. Calls after the first return nil.
func (s *Server) Stop(ctx context.Context) error {
	s.stopping.Store(true)

	s.mu.Lock()
	serveErr := s.serveErr
	s.serveErr = nil
	s.mu.Unlock()
	if serveErr == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Warn("http server shutdown incomplete", "error", err)
		_ = s.httpServer.Close()
	}
	if serr := <-serveErr; serr != nil && err == nil {
		err = serr
	}
	s.logger.Info("http server stopped")
	return err
}
