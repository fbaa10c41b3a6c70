// Package tlsroots manages the TLS material used by sigstream.
//
// Pool builds root CA sets for clients (sigstream-cli --ca-file).
// Reloader serves the HTTP server certificate and reloads it when the
// certificate or key file is rewritten.
package tlsroots
