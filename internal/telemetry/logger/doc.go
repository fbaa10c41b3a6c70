// Package logger provides structured logging for sigstream.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, the Logger interface, global level
//   - context.go: context propagation of loggers and request IDs
//   - redact.go: masking of attributes whose key names look secret
//
// Components that only need a *slog.Logger take one from NewSlog or
// Logger.Slog; the global level set by SetLevel applies to both.
package logger
