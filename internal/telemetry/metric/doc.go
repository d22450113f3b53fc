// Package metric provides Prometheus metrics for jobhost.
//
// Metrics include:
//
//   - Run counters and duration histogram, by outcome
//   - In-flight run gauge
//   - Shutdown signals fired, by source
//   - Grace wait duration and timeouts
//
// A nil *Registry records nothing, so components can take one optionally.
// Metrics are exposed at /metrics in Prometheus format by the serve command.
package metric
