package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/sigstream/internal/core/service"
	"github.com/yndnr/sigstream/internal/infra/ratelimit"
	"github.com/yndnr/sigstream/internal/server/httpserver/handler"
	"github.com/yndnr/sigstream/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Messages serves stream reads and appends.
	Messages *service.MessageService

	// Store is pinged by /ready. Optional.
	Store handler.Pinger

	// Metrics records request metrics and serves /metrics. Optional.
	Metrics *metric.Registry

	Logger *slog.Logger

	// CORSAllowedOrigins lists allowed CORS origins; empty disables CORS.
	CORSAllowedOrigins []string

	// RateLimit is the per-IP request rate for stream routes; 0 disables it.
	RateLimit int

	// TrustedProxies are the peers whose forwarding headers name the client.
	TrustedProxies TrustedProxies

	EnableAccessLog bool
}

// NewRouter builds the HTTP handler with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := handler.New(cfg.Messages, cfg.Store, log)

	base := []Middleware{Recover(log), RequestID(log)}
	if cfg.EnableAccessLog {
		base = append(base, AccessLog(cfg.TrustedProxies))
	}

	streamMiddlewares := []Middleware{Recover(log), RequestID(log)}
	if len(cfg.CORSAllowedOrigins) > 0 {
		streamMiddlewares = append(streamMiddlewares, CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimit > 0 {
		limiter := ratelimit.NewRegistry(cfg.RateLimit)
		streamMiddlewares = append(streamMiddlewares, RateLimit(limiter, cfg.TrustedProxies))
	}
	if cfg.EnableAccessLog {
		streamMiddlewares = append(streamMiddlewares, AccessLog(cfg.TrustedProxies))
	}

	mux := http.NewServeMux()
	handle := func(pattern string, next http.Handler, mws []Middleware) {
		chain := append(append([]Middleware(nil), mws...), Metrics(cfg.Metrics, pattern))
		mux.Handle(pattern, Chain(next, chain...))
	}

	handle("GET /health", h, base)
	handle("GET /ready", h, base)
	handle("GET /version", h, base)
	handle("GET /openapi.json", h, base)

	handle("GET /streams/{id}/messages", h, streamMiddlewares)
	handle("POST /streams/{id}/messages", h, streamMiddlewares)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handle("OPTIONS /streams/{id}/messages", h, streamMiddlewares)
	}

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(log)))
	}

	return mux
}
