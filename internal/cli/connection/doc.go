// Package connection is the sigstream-cli HTTP client.
//
// Client wraps net/http with the server base URL, a User-Agent built from
// buildinfo and optional TLS settings. Non-2xx replies are decoded from the
// server error envelope into *APIError.
package connection
