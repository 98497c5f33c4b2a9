package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsf-ai/knowledge-assistant/internal/llm"
	"github.com/nsf-ai/knowledge-assistant/internal/middleware"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/rewrite"
	"github.com/nsf-ai/knowledge-assistant/internal/service"
	"github.com/nsf-ai/knowledge-assistant/internal/store"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
)

type stubLLM struct{}

func (stubLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "standalone"}, nil
}

func (stubLLM) Name() string { return "stub" }

type stubEngine struct {
	answer string
	err    error
}

func (s *stubEngine) Query(ctx context.Context, question string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubEngine) Insert(ctx context.Context, text string) error {
	return s.err
}

func newChatHandler(t *testing.T, eng *stubEngine) (*ChatHandler, *store.ConversationStore) {
	t.Helper()
	db, err := store.NewMemoryDB()
	require.NoError(t, err)

	conversations := store.NewConversationStore(db)
	svc := service.NewChatService(
		conversations,
		rewrite.New(stubLLM{}, ""),
		eng,
		nil,
		logger.NewNop(),
	)
	return NewChatHandler(svc, logger.NewNop()), conversations
}

func doChat(h *ChatHandler, userID uint, body model.ChatRequest) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/chat", bytes.NewReader(payload))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	rec := httptest.NewRecorder()
	h.Chat(rec, req.WithContext(ctx))
	return rec
}

func TestChat(t *testing.T) {
	t.Run("successful turn returns the answer", func(t *testing.T) {
		h, _ := newChatHandler(t, &stubEngine{answer: "forty-two"})

		rec := doChat(h, 1, model.ChatRequest{Message: "what is the answer?"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp model.ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "forty-two", resp.Response)
		assert.NotZero(t, resp.ConversationID)
	})

	t.Run("engine failure returns the apology, not the error", func(t *testing.T) {
		h, conversations := newChatHandler(t, &stubEngine{
			err: apperr.Engine("engine unreachable", errors.New("connection refused")),
		})

		rec := doChat(h, 1, model.ChatRequest{Message: "hello"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp model.ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apologyResponse, resp.Response)
		assert.NotContains(t, rec.Body.String(), "connection refused")

		// The conversation created for the failed first turn is
		// referenced in the response rather than orphaned.
		require.NotZero(t, resp.ConversationID)
		conv, err := conversations.GetOwned(context.Background(), resp.ConversationID, 1)
		require.NoError(t, err)
		assert.Equal(t, "hello", conv.Title)
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		h, _ := newChatHandler(t, &stubEngine{answer: "unused"})

		rec := doChat(h, 1, model.ChatRequest{Message: ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("foreign conversation id is not found", func(t *testing.T) {
		h, _ := newChatHandler(t, &stubEngine{answer: "mine"})

		rec := doChat(h, 1, model.ChatRequest{Message: "first"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp model.ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		rec = doChat(h, 2, model.ChatRequest{Message: "second", ConversationID: &resp.ConversationID})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
