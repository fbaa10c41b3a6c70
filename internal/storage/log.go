package storage

import (
	"context"
	"errors"

	"github.com/yndnr/sigstream/internal/core/domain"
)

// ErrClosed is returned by operations on a closed log.
var ErrClosed = errors.New("storage: message log closed")

// MessageLog is an ordered append-only list store keyed by stream address.
//
// Implementations must be safe for concurrent use and must serialize
// concurrent appends to the same key.
type MessageLog interface {
	// Append adds blobs at the tail of the list, creating it if absent, and
	// returns the new list length. All blobs land contiguously, and either
	// all of them are stored or none is.
	Append(ctx context.Context, key domain.StreamAddress, blobs ...[]byte) (int64, error)

	// Range returns the elements from start to stop, both inclusive, in
	// insertion order. A missing key yields an empty slice.
	Range(ctx context.Context, key domain.StreamAddress, start, stop int64) ([][]byte, error)

	// Len returns the list length, 0 for a missing key.
	Len(ctx context.Context, key domain.StreamAddress) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// ClampRange resolves LRANGE-style start and stop against a list of the
// given length. It returns the inclusive index range to read, or ok=false
// when the range is empty.
func ClampRange(length, start, stop int64) (lo, hi int64, ok bool) {
	if length <= 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += length
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += length
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop || start >= length {
		return 0, 0, false
	}
	return start, stop, true
}
