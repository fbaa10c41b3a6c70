package redisserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/infra/ratelimit"
	"github.com/yndnr/sigstream/internal/storage"
	"github.com/yndnr/sigstream/internal/telemetry/metric"
)

// formatRedisError converts an error to a Redis error string.
// For DomainErrors, returns "ERR <code> <message>".
func formatRedisError(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return "ERR " + de.Code + " " + de.Message
	}
	return "ERR " + err.Error()
}

// CommandHandler executes commands against a message log.
type CommandHandler struct {
	log         storage.MessageLog
	logger      *slog.Logger
	rateLimiter *ratelimit.Registry
	metrics     *metric.Registry
}

// NewCommandHandler creates a handler. rateLimit is in commands per second
// per client IP; 0 disables limiting.
func NewCommandHandler(log storage.MessageLog, rateLimit int, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &CommandHandler{
		log:    log,
		logger: logger,
	}
	if rateLimit > 0 {
		h.rateLimiter = ratelimit.NewRegistry(rateLimit)
	}
	return h
}

// Handle executes one command and writes the reply to conn's buffer.
func (h *CommandHandler) Handle(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) == 0 {
		_ = WriteError(conn.bw, "ERR no command")
		return
	}

	cmdName := normalizeCommandName(args[0])
	start := time.Now()
	status := "ok"
	defer func() {
		h.metrics.RecordRequest("resp", cmdName, status)
		h.metrics.ObserveRequestDuration("resp", cmdName, time.Since(start).Seconds())
	}()

	switch cmdName {
	case "PING":
		h.handlePing(conn, args)
		return
	case "QUIT":
		h.handleQuit(conn)
		return
	}

	if h.rateLimiter != nil && !h.rateLimiter.Allow(clientIP(conn.RemoteAddr())) {
		status = "rate_limited"
		_ = WriteError(conn.bw, formatRedisError(domain.ErrRateLimited))
		return
	}

	switch cmdName {
	case "ECHO":
		h.handleEcho(conn, args)
	case "SELECT":
		h.handleSelect(conn, args)
	case "RPUSH":
		h.handleRPush(ctx, conn, args)
	case "LRANGE":
		h.handleLRange(ctx, conn, args)
	case "LLEN":
		h.handleLLen(ctx, conn, args)
	default:
		cmdName, status = "UNKNOWN", "unknown_command"
		_ = WriteError(conn.bw, "ERR unknown command '"+normalizeCommandName(args[0])+"'")
	}
}

func clientIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

func wrongArgs(conn *Conn, cmd string) {
	_ = WriteError(conn.bw, "ERR wrong number of arguments for '"+cmd+"' command")
}

func (h *CommandHandler) handlePing(conn *Conn, args [][]byte) {
	switch len(args) {
	case 1:
		_ = WriteSimpleString(conn.bw, "PONG")
	case 2:
		_ = WriteBulk(conn.bw, args[1])
	default:
		wrongArgs(conn, "ping")
	}
}

func (h *CommandHandler) handleEcho(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "echo")
		return
	}
	_ = WriteBulk(conn.bw, args[1])
}

func (h *CommandHandler) handleQuit(conn *Conn) {
	_ = WriteSimpleString(conn.bw, "OK")
	_ = conn.bw.Flush()
	_ = conn.Close()
}

// SELECT 0 is accepted so clients configured with a database index work.
func (h *CommandHandler) handleSelect(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "select")
		return
	}
	if string(args[1]) != "0" {
		_ = WriteError(conn.bw, "ERR DB index is out of range")
		return
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// RPUSH <key> <value> [value ...]
func (h *CommandHandler) handleRPush(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) < 3 {
		wrongArgs(conn, "rpush")
		return
	}
	key, err := domain.NewStreamAddress(args[1])
	if err != nil {
		_ = WriteError(conn.bw, "ERR invalid key: stream address must be 8 bytes")
		return
	}

	length, err := h.log.Append(ctx, key, args[2:]...)
	if err != nil {
		h.logger.Error("rpush failed", "stream", key.String(), "error", err)
		_ = WriteError(conn.bw, formatRedisError(err))
		return
	}
	_ = WriteInteger(conn.bw, length)
}

// LRANGE <key> <start> <stop>
//
// A key that is not a stream address cannot exist, so it reads as empty.
func (h *CommandHandler) handleLRange(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "lrange")
		return
	}
	start, err1 := strconv.ParseInt(string(args[2]), 10, 64)
	stop, err2 := strconv.ParseInt(string(args[3]), 10, 64)
	if err1 != nil || err2 != nil {
		_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
		return
	}
	key, err := domain.NewStreamAddress(args[1])
	if err != nil {
		_ = WriteArrayHeader(conn.bw, 0)
		return
	}

	items, err := h.log.Range(ctx, key, start, stop)
	if err != nil {
		h.logger.Error("lrange failed", "stream", key.String(), "error", err)
		_ = WriteError(conn.bw, formatRedisError(err))
		return
	}
	_ = WriteBulkArray(conn.bw, items)
}

// LLEN <key>
func (h *CommandHandler) handleLLen(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "llen")
		return
	}
	key, err := domain.NewStreamAddress(args[1])
	if err != nil {
		_ = WriteInteger(conn.bw, 0)
		return
	}

	n, err := h.log.Len(ctx, key)
	if err != nil {
		_ = WriteError(conn.bw, formatRedisError(err))
		return
	}
	_ = WriteInteger(conn.bw, n)
}
