// Package cmap provides a generic sharded concurrent map.
//
// Keys are spread over a power-of-two number of shards by a caller-supplied
// Hasher. Each shard has its own RWMutex, so operations on keys in different
// shards never contend.
//
// Usage:
//
//	m := cmap.New[string, int](cmap.HashString)
//	m.Set("key", 1)
//	val, ok := m.Get("key")
//
// HashBytes and HashString use murmur3, which keeps shard placement stable
// across processes.
package cmap
