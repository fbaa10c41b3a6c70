package redisserver

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/sigstream/internal/storage/memory"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.RateLimit = 0

	s := New(cfg, memory.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func dial(t *testing.T, s *Server) (net.Conn, *bufio.Reader) {
	t.Helper()
	c, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))
	return c, bufio.NewReader(c)
}

func readLineReply(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read reply error = %v", err)
	}
	return line
}

func TestServer_PingAndPipeline(t *testing.T) {
	s := startTestServer(t)
	c, r := dial(t, s)

	_, err := io.WriteString(c, "PING\r\n*3\r\n$5\r\nRPUSH\r\n$8\r\nABCDEFGH\r\n$1\r\nv\r\n*2\r\n$4\r\nLLEN\r\n$8\r\nABCDEFGH\r\n")
	if err != nil {
		t.Fatalf("write error = %v", err)
	}

	for _, want := range []string{"+PONG\r\n", ":1\r\n", ":1\r\n"} {
		if got := readLineReply(t, r); got != want {
			t.Errorf("reply = %q, want %q", got, want)
		}
	}
}

func TestServer_ProtocolErrorClosesConnection(t *testing.T) {
	s := startTestServer(t)
	c, r := dial(t, s)

	if _, err := io.WriteString(c, "*1\r\n:1\r\n"); err != nil {
		t.Fatalf("write error = %v", err)
	}
	if got := readLineReply(t, r); !strings.HasPrefix(got, "-ERR Protocol error") {
		t.Errorf("reply = %q, want protocol error", got)
	}
	if _, err := r.ReadByte(); err != io.EOF {
		t.Errorf("connection should be closed, read error = %v", err)
	}
}

func TestServer_ShutdownClosesIdleConnections(t *testing.T) {
	s := startTestServer(t)
	_, r := dial(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if _, err := r.ReadByte(); err == nil {
		t.Error("idle connection should be closed by Shutdown")
	}
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	s := New(nil, memory.New(), nil)
	if s.Addr() != nil {
		t.Error("Addr() before Start should be nil")
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
