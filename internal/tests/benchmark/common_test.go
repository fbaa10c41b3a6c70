package benchmark

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/storage"
	"github.com/yndnr/sigstream/internal/storage/memory"
)

// StreamLengths are the prefilled stream lengths used by read benchmarks.
var StreamLengths = []int{100, 1000, 10000}

// StreamCounts are the numbers of distinct streams used by write benchmarks.
var StreamCounts = []int{1, 64, 4096}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newStream returns a random stream address.
func newStream() domain.StreamAddress {
	var raw [domain.StreamAddressSize]byte
	_, _ = rand.Read(raw[:])
	id, _ := domain.NewStreamAddress(raw[:])
	return id
}

// newMessage returns a message with random content.
func newMessage() domain.Message {
	var raw [domain.PackedSize]byte
	_, _ = rand.Read(raw[:])
	m, _ := domain.UnpackMessage(raw[:])
	return m
}

// backends opens every embeddable message log.
func backends(b *testing.B) map[string]storage.MessageLog {
	b.Helper()

	bl, err := storage.OpenBadger(b.TempDir(), storage.DefaultBadgerConfig(), quietLogger())
	if err != nil {
		b.Fatalf("OpenBadger: %v", err)
	}
	b.Cleanup(func() { bl.Close() })

	return map[string]storage.MessageLog{
		"memory": memory.New(),
		"badger": bl,
	}
}

// prefill appends n packed messages to id.
func prefill(ctx context.Context, b *testing.B, log storage.MessageLog, id domain.StreamAddress, n int) {
	b.Helper()
	blob := newMessage().Pack()
	for i := 0; i < n; i++ {
		if _, err := log.Append(ctx, id, blob); err != nil {
			b.Fatalf("prefill: %v", err)
		}
	}
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithLengths runs benchFn once per stream length.
func runWithLengths(b *testing.B, lengths []int, benchFn func(b *testing.B, length int)) {
	for _, n := range lengths {
		b.Run(fmt.Sprintf("len_%d", n), func(b *testing.B) {
			benchFn(b, n)
		})
	}
}
