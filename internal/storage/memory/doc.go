// Package memory provides an in-memory storage.MessageLog.
//
// Lists live in a sharded concurrent map keyed by stream address. Each list
// carries its own lock, so appends to different streams never contend and
// appends to the same stream are serialized.
//
// Nothing is persisted. Use it for tests and throwaway deployments.
package memory
