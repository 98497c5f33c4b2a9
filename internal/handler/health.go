package handler

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/nsf-ai/knowledge-assistant/internal/events"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db     *gorm.DB
	events *events.Client
}

// NewHealthHandler creates a new health handler. The events client may
// be nil when audit publishing is disabled.
func NewHealthHandler(db *gorm.DB, eventsClient *events.Client) *HealthHandler {
	return &HealthHandler{
		db:     db,
		events: eventsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}

	if h.events != nil && !h.events.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
