// Package storage defines the message log contract and its Badger backend.
//
// A message log is a set of append-only lists of opaque blobs, one list per
// stream address. Lists are created by their first append and read back with
// Redis LRANGE semantics: start and stop are inclusive indexes, negative
// values count from the tail, and out-of-range bounds are clamped.
//
// Backends:
//
//   - BadgerLog (this package): persistent, embedded
//   - memory.Log: in-process, for tests and ephemeral deployments
//   - redislog.Log: any Redis-compatible server
//
// Backends store blobs verbatim. Validating their shape is the caller's job.
package storage
