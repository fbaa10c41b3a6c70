package cmap

import "github.com/spaolacci/murmur3"

// Hasher maps a key to a 64-bit hash used for shard selection.
type Hasher[K comparable] func(K) uint64

// HashBytes hashes b with murmur3.
func HashBytes(b []byte) uint64 {
	return murmur3.Sum64(b)
}

// HashString hashes s with murmur3.
func HashString(s string) uint64 {
	return murmur3.Sum64([]byte(s))
}
