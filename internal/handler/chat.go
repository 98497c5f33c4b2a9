package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nsf-ai/knowledge-assistant/internal/middleware"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/service"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
)

// apologyResponse is returned in place of an answer when the engine or
// storage fails mid-turn. The failed turn is not persisted, so the
// user can simply retry.
const apologyResponse = "I apologize, but I'm unable to process your request at the moment. Please try again later."

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Chat handles POST /api/chat/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.HandleTurn(ctx, userID, req.Message, req.ConversationID)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindForbidden, apperr.KindValidation:
			writeAppError(w, err)
		default:
			// Engine and storage failures are not the user's problem
			// to diagnose. Log the detail, answer with an apology.
			h.logger.Error("chat turn failed",
				zap.Uint("user_id", userID), zap.Error(err))
			conversationID := uint(0)
			var turnErr *service.TurnError
			if errors.As(err, &turnErr) {
				// A first turn creates the conversation before the
				// engine runs; hand its id back so it is not orphaned.
				conversationID = turnErr.ConversationID
			} else if req.ConversationID != nil {
				conversationID = *req.ConversationID
			}
			writeJSON(w, http.StatusOK, model.ChatResponse{
				Response:       apologyResponse,
				ConversationID: conversationID,
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Conversations handles GET /api/chat/conversations
func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	summaries, err := h.service.Conversations(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list conversations",
			zap.Uint("user_id", userID), zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Messages handles GET /api/chat/conversations/{id}/messages
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	conversationID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	messages, err := h.service.Messages(ctx, userID, conversationID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// parseIDParam parses a numeric chi URL parameter.
func parseIDParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
