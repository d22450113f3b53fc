// Package httpserver provides the HTTP server hosted by "jobhost serve".
//
// Server implements host.Service. Routes:
//
//   - GET /health: liveness
//   - GET /ready: readiness, 503 once the server is stopping
//   - GET /metrics: Prometheus metrics, when a registry is configured
//
// Every route runs behind Recover, RequestID, RateLimit and AccessLog.
package httpserver
