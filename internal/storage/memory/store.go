package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/storage"
	"github.com/yndnr/sigstream/pkg/cmap"
)

// Log is an in-memory message log.
type Log struct {
	lists  *cmap.Map[domain.StreamAddress, *list]
	closed atomic.Bool
}

type list struct {
	mu    sync.RWMutex
	items [][]byte
}

// Option configures the Log.
type Option func(*options)

type options struct {
	shards int
}

// WithShardCount sets the number of map shards (power of 2).
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shards = n
	}
}

// New creates an empty in-memory log.
func New(opts ...Option) *Log {
	o := options{shards: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Log{
		lists: cmap.NewWithShards[domain.StreamAddress, *list](hashAddress, o.shards),
	}
}

func hashAddress(addr domain.StreamAddress) uint64 {
	return cmap.HashBytes(addr.Bytes())
}

// Append adds copies of blobs at the tail of the list for key.
func (s *Log) Append(ctx context.Context, key domain.StreamAddress, blobs ...[]byte) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if len(blobs) == 0 {
		return s.Len(ctx, key)
	}

	l, ok := s.lists.Get(key)
	if !ok {
		l, _ = s.lists.GetOrSet(key, &list{})
	}

	values := make([][]byte, len(blobs))
	for i, blob := range blobs {
		values[i] = make([]byte, len(blob))
		copy(values[i], blob)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, values...)
	return int64(len(l.items)), nil
}

// Range returns copies of elements start..stop (inclusive) for key.
func (s *Log) Range(ctx context.Context, key domain.StreamAddress, start, stop int64) ([][]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := [][]byte{}
	l, ok := s.lists.Get(key)
	if !ok {
		return out, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	lo, hi, ok := storage.ClampRange(int64(len(l.items)), start, stop)
	if !ok {
		return out, nil
	}
	for _, item := range l.items[lo : hi+1] {
		value := make([]byte, len(item))
		copy(value, item)
		out = append(out, value)
	}
	return out, nil
}

// Len returns the list length for key.
func (s *Log) Len(ctx context.Context, key domain.StreamAddress) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	l, ok := s.lists.Get(key)
	if !ok {
		return 0, nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.items)), nil
}

// Streams returns the number of non-empty streams.
func (s *Log) Streams() int {
	return s.lists.Count()
}

// Ping reports ErrClosed once the log is closed.
func (s *Log) Ping(ctx context.Context) error {
	return s.check(ctx)
}

// Close drops all lists.
func (s *Log) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.lists.Clear()
	}
	return nil
}

func (s *Log) check(ctx context.Context) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	return ctx.Err()
}
