package httpserver

import (
	"encoding/json"
	"net/http"
	"time"
)

// NewRouter creates the HTTP router for s.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics.Handler())
	}

	// Order: Recover -> RequestID -> RateLimit -> AccessLog -> mux
	middlewares := []Middleware{Recover(s.logger), RequestID()}
	if s.cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(s.cfg.RateLimit))
	}
	middlewares = append(middlewares, AccessLog(s.logger))
	return Chain(mux, middlewares...)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.Stopping() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "stopping",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
