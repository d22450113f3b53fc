// Package logger provides structured logging for jobhost.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, JSON/text handlers, dynamic level
//   - context.go: logger and run ID propagation through context
//   - redact.go: masking of secrets in attributes and command lines
//
// Usage:
//
//	log, err := logger.New(logger.Config{Level: "debug", Format: "text"})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault(log)
//	logger.L(ctx).Info("run finished")
package logger
