// Package httpserver serves the sigstream HTTP API.
//
// NewRouter mounts the handler package behind per-route middleware:
//
//	Recover -> RequestID -> CORS -> RateLimit -> AccessLog -> Metrics -> handler
//
// /metrics is served from the Prometheus registry. Server wraps
// net/http with optional TLS whose certificate is reloaded on change.
package httpserver
