package redislog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/server/redisserver"
	"github.com/yndnr/sigstream/internal/storage"
	"github.com/yndnr/sigstream/internal/storage/memory"
	"github.com/yndnr/sigstream/internal/storage/redislog"
	"github.com/yndnr/sigstream/internal/storage/storagetest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startBackend serves a fresh memory log over RESP on a random port.
func startBackend(t *testing.T) string {
	t.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.RateLimit = 0

	srv := redisserver.New(cfg, memory.New(), quietLogger())
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

func newLog(t *testing.T) storage.MessageLog {
	cfg := redislog.DefaultConfig()
	cfg.Addr = startBackend(t)
	return redislog.New(cfg, quietLogger())
}

func TestLog_Conformance(t *testing.T) {
	storagetest.Run(t, newLog)
}

func TestLog_Closed(t *testing.T) {
	storagetest.RunClosed(t, newLog)
}

func TestLog_Unreachable(t *testing.T) {
	cfg := redislog.DefaultConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DialTimeout = 500 * time.Millisecond
	l := redislog.New(cfg, quietLogger())
	defer l.Close()

	ctx := context.Background()
	if err := l.Ping(ctx); err == nil {
		t.Error("Ping() to a closed port should fail")
	}
	_, err := l.Range(ctx, storagetest.Addr(1), 0, 1)
	if err == nil {
		t.Fatal("Range() to a closed port should fail")
	}
	if errors.Is(err, domain.ErrMessageType) {
		t.Errorf("connection failure must not be reported as a type error: %v", err)
	}
}
