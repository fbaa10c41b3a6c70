// Package storagetest provides a conformance suite for storage.MessageLog
// implementations.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/storage"
)

// Factory returns a fresh, empty log. The suite closes it.
type Factory func(t *testing.T) storage.MessageLog

// Addr returns a deterministic stream address derived from i.
func Addr(i byte) domain.StreamAddress {
	addr, err := domain.NewStreamAddress([]byte{0, 0, 0, 0, 0, 0, 0, i})
	if err != nil {
		panic(err)
	}
	return addr
}

// Blob returns a 192-byte blob filled with b.
func Blob(b byte) []byte {
	return bytes.Repeat([]byte{b}, domain.PackedSize)
}

// Run executes the conformance suite against logs produced by newLog.
func Run(t *testing.T, newLog Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, log storage.MessageLog)
	}{
		{"MissingKey", testMissingKey},
		{"AppendReturnsLength", testAppendReturnsLength},
		{"RangeInclusiveStop", testRangeInclusiveStop},
		{"RangeNegativeIndexes", testRangeNegativeIndexes},
		{"KeysAreIndependent", testKeysAreIndependent},
		{"BlobsStoredVerbatim", testBlobsStoredVerbatim},
		{"ConcurrentAppends", testConcurrentAppends},
		{"AppendBatch", testAppendBatch},
		{"ConcurrentBatchesContiguous", testConcurrentBatchesContiguous},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newLog(t)
			defer log.Close()
			tt.fn(t, log)
		})
	}
}

func appendN(t *testing.T, log storage.MessageLog, key domain.StreamAddress, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := log.Append(context.Background(), key, Blob(byte(i))); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}
}

func testMissingKey(t *testing.T, log storage.MessageLog) {
	ctx := context.Background()

	got, err := log.Range(ctx, Addr(1), 0, 100)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Range() on missing key = %v, want empty non-nil slice", got)
	}

	n, err := log.Len(ctx, Addr(1))
	if err != nil || n != 0 {
		t.Errorf("Len() on missing key = (%d, %v), want (0, nil)", n, err)
	}
}

func testAppendReturnsLength(t *testing.T, log storage.MessageLog) {
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		got, err := log.Append(ctx, Addr(1), Blob(byte(want)))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if got != want {
			t.Errorf("Append() = %d, want %d", got, want)
		}
	}
	if n, _ := log.Len(ctx, Addr(1)); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
}

func testRangeInclusiveStop(t *testing.T, log storage.MessageLog) {
	ctx := context.Background()
	appendN(t, log, Addr(1), 3)

	tests := []struct {
		start, stop int64
		want        []byte
	}{
		{0, 100, []byte{0, 1, 2}},
		{0, 2, []byte{0, 1, 2}},
		{1, 1, []byte{1}},
		{0, 0, []byte{0}},
		{1, 2, []byte{1, 2}},
		{3, 100, nil},
		{2, 1, nil},
	}

	for _, tt := range tests {
		got, err := log.Range(ctx, Addr(1), tt.start, tt.stop)
		if err != nil {
			t.Fatalf("Range(%d, %d) error = %v", tt.start, tt.stop, err)
		}
		if err := sameBlobs(got, tt.want); err != nil {
			t.Errorf("Range(%d, %d): %v", tt.start, tt.stop, err)
		}
	}
}

func testRangeNegativeIndexes(t *testing.T, log storage.MessageLog) {
	ctx := context.Background()
	appendN(t, log, Addr(1), 5)

	got, err := log.Range(ctx, Addr(1), -2, -1)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if err := sameBlobs(got, []byte{3, 4}); err != nil {
		t.Error(err)
	}

	got, err = log.Range(ctx, Addr(1), 0, -1)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if err := sameBlobs(got, []byte{0, 1, 2, 3, 4}); err != nil {
		t.Error(err)
	}
}

func testKeysAreIndependent(t *testing.T, log storage.MessageLog) {
	ctx := context.Background()
	appendN(t, log, Addr(1), 2)
	if _, err := log.Append(ctx, Addr(2), Blob(9)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := log.Range(ctx, Addr(2), 0, -1)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if err := sameBlobs(got, []byte{9}); err != nil {
		t.Error(err)
	}
}

func testBlobsStoredVerbatim(t *testing.T, log storage.MessageLog) {
	ctx := context.Background()
	odd := []byte("not a message")
	if _, err := log.Append(ctx, Addr(1), odd); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := log.Range(ctx, Addr(1), 0, 0)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(got) != 1 || !bytes.Equal(got[0], odd) {
		t.Errorf("Range() = %q, want [%q]", got, odd)
	}

	odd[0] = 'X'
	got, _ = log.Range(ctx, Addr(1), 0, 0)
	if got[0][0] != 'n' {
		t.Error("log must not alias the caller's buffer")
	}
}

func testConcurrentAppends(t *testing.T, log storage.MessageLog) {
	const workers, perWorker = 8, 25
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := log.Append(ctx, Addr(7), Blob(byte(w))); err != nil {
					t.Errorf("Append() error = %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	n, err := log.Len(ctx, Addr(7))
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != workers*perWorker {
		t.Errorf("Len() = %d, want %d", n, workers*perWorker)
	}

	got, err := log.Range(ctx, Addr(7), 0, -1)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(got) != workers*perWorker {
		t.Errorf("len(Range()) = %d, want %d", len(got), workers*perWorker)
	}
}

func testAppendBatch(t *testing.T, log storage.MessageLog) {
	ctx := context.Background()
	appendN(t, log, Addr(1), 1)

	n, err := log.Append(ctx, Addr(1), Blob(1), Blob(2), Blob(3))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if n != 4 {
		t.Errorf("Append() = %d, want 4", n)
	}

	got, err := log.Range(ctx, Addr(1), 0, -1)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if err := sameBlobs(got, []byte{0, 1, 2, 3}); err != nil {
		t.Error(err)
	}

	if n, err := log.Append(ctx, Addr(1)); err != nil || n != 4 {
		t.Errorf("Append() with no blobs = (%d, %v), want (4, nil)", n, err)
	}
}

// Two writers push large batches onto one key at once. Each batch must land
// as one run, so the stored list switches writer exactly once.
func testConcurrentBatchesContiguous(t *testing.T, log storage.MessageLog) {
	const perBatch = 200
	ctx := context.Background()

	batch := func(b byte) [][]byte {
		blobs := make([][]byte, perBatch)
		for i := range blobs {
			blobs[i] = Blob(b)
		}
		return blobs
	}

	var wg sync.WaitGroup
	for _, b := range []byte{1, 2} {
		wg.Add(1)
		go func(blobs [][]byte) {
			defer wg.Done()
			if _, err := log.Append(ctx, Addr(8), blobs...); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}(batch(b))
	}
	wg.Wait()

	got, err := log.Range(ctx, Addr(8), 0, -1)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(got) != 2*perBatch {
		t.Fatalf("len(Range()) = %d, want %d", len(got), 2*perBatch)
	}
	switches := 0
	for i := 1; i < len(got); i++ {
		if got[i][0] != got[i-1][0] {
			switches++
		}
	}
	if switches != 1 {
		t.Errorf("writer switched %d times, want 1", switches)
	}
}

func testPing(t *testing.T, log storage.MessageLog) {
	if err := log.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// RunClosed checks that a closed log reports storage.ErrClosed.
func RunClosed(t *testing.T, newLog Factory) {
	log := newLog(t)
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if _, err := log.Append(ctx, Addr(1), Blob(1)); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Append() after Close error = %v, want ErrClosed", err)
	}
	if _, err := log.Range(ctx, Addr(1), 0, -1); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Range() after Close error = %v, want ErrClosed", err)
	}
	if err := log.Ping(ctx); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrClosed", err)
	}
}

func sameBlobs(got [][]byte, want []byte) error {
	if len(got) != len(want) {
		return fmt.Errorf("got %d blobs, want %d", len(got), len(want))
	}
	for i, b := range want {
		if !bytes.Equal(got[i], Blob(b)) {
			return fmt.Errorf("blob %d: got first byte %d, want %d", i, got[i][0], b)
		}
	}
	return nil
}
