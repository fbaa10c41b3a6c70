// Package domain defines the sigstream value types and their codecs.
//
// Everything here is pure: no I/O, no locking, value in and value out.
//
//   - StreamAddress: 8-byte key of one message stream
//   - Signature, MessageData: the two fixed-size halves of a message
//   - Message: the record exchanged over the API; packs into a 192-byte blob
//   - Schemas: text shape of each fixed-size type, for API schema generation
//   - Errors: coded domain errors shared by every layer
//
// Wire layout of a packed message:
//
//	offset   0            128          192
//	         | data (128) | signature (64) |
//
// The packing order is data first even though the JSON and struct order is
// signature first. Stored blobs depend on this layout.
package domain
