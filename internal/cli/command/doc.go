// Package command provides the jobhost CLI commands.
//
//   - root.go: App, global flags, configuration and logger setup
//   - run.go: "run", a command executed as protected work
//   - serve.go: "serve", the HTTP server hosted until shutdown
//   - config.go: "config", the effective configuration
//   - version.go: "version"
package command
