package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/nsf-ai/knowledge-assistant/internal/store"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
)

// AdminHandler handles admin endpoints.
type AdminHandler struct {
	admin  *store.AdminStore
	users  *store.UserStore
	logger *logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admin *store.AdminStore, users *store.UserStore, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		users:  users,
		logger: log,
	}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.SystemStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute system stats", zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Users handles GET /api/admin/users
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.UserStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute user stats", zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "user deleted successfully",
	})
}

// Conversations handles GET /api/admin/conversations
func (h *AdminHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.admin.AllConversations(r.Context())
	if err != nil {
		h.logger.Error("failed to list all conversations", zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversations)
}
