// Package buildinfo exposes build-time version information.
//
// Version, Commit and BuildTime are set with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/sigstream/internal/infra/buildinfo.Version=v1.0.0"
//
// When Commit is not injected it is taken from the VCS stamp embedded by
// the Go toolchain, if present.
package buildinfo
