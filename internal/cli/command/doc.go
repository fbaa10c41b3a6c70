// Package command defines the sigstream-cli commands on urfave/cli/v2.
//
//   - root.go: the application, global flags and shared helpers
//   - stream.go: stream read, append and new-id
//   - system.go: system health and version
//
// Every action builds a connection.Client from the global flags, calls one
// endpoint and renders the result with the formatter selected by --output.
package command
