package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/sigstream/internal/core/domain"
	"github.com/yndnr/sigstream/internal/infra/buildinfo"
	"github.com/yndnr/sigstream/internal/telemetry/logger"
)

const readyTimeout = 2 * time.Second

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. It fails with 503 while the store is
// unreachable.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			logger.L(r.Context()).Warn("readiness check failed", "error", err)
			h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrStorage.WithDetails(err.Error()))
			return
		}
	}

	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /version.
func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, buildinfo.Get())
}
