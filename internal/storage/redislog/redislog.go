// Package redislog implements storage.MessageLog on a Redis server.
//
// Each stream is a Redis list whose key is the raw 8-byte stream address.
// Append is RPUSH and Range is LRANGE, so stop is inclusive and negative
// indexes count from the tail exactly as Redis defines them.
package redislog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/storage"
)

// Config configures the Redis connection.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:6379",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Log is a Redis-backed message log.
type Log struct {
	client *redis.Client
	logger *slog.Logger
	closed atomic.Bool
}

// New creates a Log. No connection is made until the first command.
func New(cfg Config, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		PoolSize:              cfg.PoolSize,
		DialTimeout:           cfg.DialTimeout,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableIndentity:      true,
		ContextTimeoutEnabled: true,
	})

	logger.Info("redis message log configured", "addr", cfg.Addr, "db", cfg.DB)
	return &Log{client: client, logger: logger}
}

func keyOf(addr domain.StreamAddress) string {
	return string(addr.Bytes())
}

// Append pushes blobs onto the tail of the list with a single RPUSH.
func (l *Log) Append(ctx context.Context, key domain.StreamAddress, blobs ...[]byte) (int64, error) {
	if l.closed.Load() {
		return 0, storage.ErrClosed
	}
	if len(blobs) == 0 {
		return l.Len(ctx, key)
	}
	values := make([]any, len(blobs))
	for i, blob := range blobs {
		values[i] = blob
	}
	n, err := l.client.RPush(ctx, keyOf(key), values...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: rpush: %w", err)
	}
	return n, nil
}

// Range runs LRANGE key start stop.
//
// Every element must come back as a bulk string. Anything else means the key
// does not hold a message list and yields domain.ErrMessageType.
func (l *Log) Range(ctx context.Context, key domain.StreamAddress, start, stop int64) ([][]byte, error) {
	if l.closed.Load() {
		return nil, storage.ErrClosed
	}
	reply, err := l.client.Do(ctx, "LRANGE", keyOf(key), start, stop).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return [][]byte{}, nil
		}
		return nil, fmt.Errorf("redis: lrange: %w", err)
	}

	out := make([][]byte, 0, len(reply))
	for _, v := range reply {
		blob, err := domain.BlobFromValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, blob)
	}
	return out, nil
}

// Len runs LLEN key.
func (l *Log) Len(ctx context.Context, key domain.StreamAddress) (int64, error) {
	if l.closed.Load() {
		return 0, storage.ErrClosed
	}
	n, err := l.client.LLen(ctx, keyOf(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: llen: %w", err)
	}
	return n, nil
}

// Ping runs PING.
func (l *Log) Ping(ctx context.Context) error {
	if l.closed.Load() {
		return storage.ErrClosed
	}
	return l.client.Ping(ctx).Err()
}

// Close closes the connection pool.
func (l *Log) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.client.Close()
}
