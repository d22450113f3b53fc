// Package config defines the jobhost configuration.
//
//   - spec.go: HostConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation
//   - load.go: Loading through internal/infra/confloader
package config
