package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/core/service"
	"github.com/yndnr/sigstream/internal/telemetry/logger"
)

// Pinger reports whether the message store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler routes requests to the message service.
type Handler struct {
	messages *service.MessageService
	store    Pinger
	logger   *slog.Logger
	mux      *http.ServeMux
	openapi  []byte
}

// New creates a Handler. store may be nil, in which case /ready always
// reports ready.
func New(messages *service.MessageService, store Pinger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		messages: messages,
		store:    store,
		logger:   log,
		mux:      http.NewServeMux(),
	}
	h.openapi = buildOpenAPI()
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /version", h.handleVersion)
	h.mux.HandleFunc("GET /openapi.json", h.handleOpenAPI)

	h.mux.HandleFunc("GET /streams/{id}/messages", h.handleListMessages)
	h.mux.HandleFunc("POST /streams/{id}/messages", h.handleAppendMessage)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, de *domain.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", de.Code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(NewErrorResponse(logger.RequestIDFromContext(r.Context()), de.Code, de.Message, de.Details))
}

// handleServiceError writes err as an error envelope. Errors that carry no
// code come from the store and are reported as storage errors.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.L(r.Context()).Slog()

	de, ok := asDomainError(err)
	if !ok {
		log.Error("store failure", "path", r.URL.Path, "error", err)
		h.writeError(w, r, http.StatusInternalServerError, domain.ErrStorage)
		return
	}

	status := ErrorCodeToHTTPStatus(de.Code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "code", de.Code, "error", err)
	}
	h.writeError(w, r, status, de)
}

func asDomainError(err error) (*domain.DomainError, bool) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ErrorCodeToHTTPStatus maps an SS- error code to its HTTP status from the
// leading digits of the numeric part.
func ErrorCodeToHTTPStatus(code string) int {
	i := strings.LastIndexByte(code, '-')
	if i < 0 || len(code)-i-1 != 4 {
		return http.StatusInternalServerError
	}
	switch num := code[i+1:]; {
	case strings.HasPrefix(num, "404"):
		return http.StatusNotFound
	case strings.HasPrefix(num, "422"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(num, "429"):
		return http.StatusTooManyRequests
	case strings.HasPrefix(num, "400"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
