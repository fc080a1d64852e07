package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	db     Pinger
	logger *log.Logger
}

func NewHealthHandler(db Pinger, logger *log.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/health", Handler: h.Health}}
}

// Health answers 200 {"status":"ok"}, or 503 when the database ping fails.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("database ping failed", "error", err)
			respond(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
