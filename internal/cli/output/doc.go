// Package output formats command results for the jobhost CLI.
//
//   - formatter.go: Format selection
//   - json.go: JSON output
//   - yaml.go: YAML output
//   - text.go: aligned key/value output
package output
