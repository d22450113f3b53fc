// Package buildinfo provides build information for jobhost.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/jobhost/internal/infra/buildinfo.Version=v1.0.0"
//
// Without ldflags, the module version and VCS revision recorded by the Go
// toolchain are used when available.
package buildinfo
