// Package handler implements the sigstream HTTP endpoints.
//
//	GET  /streams/{id}/messages?offset=&limit=   read a slice of a stream
//	POST /streams/{id}/messages                  append one message
//	GET  /health, /ready, /version, /openapi.json
//
// Stream reads and writes return bare JSON documents. Failures use the
// envelope {"code","message","request_id","timestamp"}.
package handler
