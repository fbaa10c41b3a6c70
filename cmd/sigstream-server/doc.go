// Package main provides the entry point for sigstream-server.
//
// The server stores signed messages in per-stream append-only lists and
// serves them over:
//
//   - HTTP/HTTPS: /streams/{id}/messages, health, version, metrics, OpenAPI
//   - RESP (optional): RPUSH, LRANGE and LLEN for Redis clients
//
// Usage:
//
//	sigstream-server [flags]
//	sigstream-server --config /etc/sigstream/config.yaml
//	SIGSTREAM_STORAGE_BACKEND=badger sigstream-server --data-dir /var/lib/sigstream
//
// Configuration is layered: built-in defaults, then the YAML file, then
// SIGSTREAM_* environment variables, then command-line flags. Changing
// log.level in the file takes effect without a restart.
package main
