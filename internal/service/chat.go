// Package service provides the orchestration logic of the knowledge assistant.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nsf-ai/knowledge-assistant/internal/engine"
	"github.com/nsf-ai/knowledge-assistant/internal/events"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/rewrite"
	"github.com/nsf-ai/knowledge-assistant/internal/store"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
	"github.com/nsf-ai/knowledge-assistant/pkg/metrics"
	"github.com/nsf-ai/knowledge-assistant/pkg/safego"
)

// historyWindow is the number of recent turns loaded as rewriting context.
const historyWindow = 3

// TurnError reports a failed turn together with the conversation that
// was resolved or created before the failure, so callers can still
// reference the conversation (a first turn creates it before the
// engine is consulted).
type TurnError struct {
	ConversationID uint
	Err            error
}

func (e *TurnError) Error() string {
	return e.Err.Error()
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// ChatService coordinates one conversational turn: conversation
// resolution, history loading, query rewriting, the engine query and
// atomic turn persistence.
//
// Concurrent turns against the same conversation are not serialized:
// each request reads its own history snapshot and appends its own row,
// so two simultaneous turns may both miss each other in their rewrite
// windows. That last-writer-wins behavior is accepted.
type ChatService struct {
	conversations *store.ConversationStore
	rewriter      *rewrite.Rewriter
	engine        engine.Engine
	audit         *events.Publisher
	logger        *logger.Logger
}

// NewChatService creates a chat service.
func NewChatService(
	conversations *store.ConversationStore,
	rewriter *rewrite.Rewriter,
	eng engine.Engine,
	audit *events.Publisher,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		rewriter:      rewriter,
		engine:        eng,
		audit:         audit,
		logger:        log,
	}
}

// HandleTurn answers one user message within a conversation, creating
// the conversation if conversationID is nil. The turn is persisted only
// after the engine produced an answer: an answer that was never
// produced is never recorded. Failures past conversation resolution
// come back as a *TurnError carrying the conversation id.
func (s *ChatService) HandleTurn(ctx context.Context, userID uint, message string, conversationID *uint) (*model.ChatResponse, error) {
	conv, err := s.resolveConversation(ctx, userID, message, conversationID)
	if err != nil {
		return nil, err
	}

	history, err := s.conversations.LastTurns(ctx, conv.ID, historyWindow)
	if err != nil {
		s.logger.Error("failed to load conversation history",
			zap.Uint("conversation_id", conv.ID), zap.Error(err))
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return nil, &TurnError{ConversationID: conv.ID, Err: err}
	}

	standalone, err := s.rewriter.Rewrite(ctx, message, history)
	if err != nil {
		s.logger.Error("query rewrite failed",
			zap.Uint("conversation_id", conv.ID), zap.Error(err))
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return nil, &TurnError{ConversationID: conv.ID, Err: err}
	}

	answer, err := s.engine.Query(ctx, standalone)
	if err != nil {
		s.logger.Error("engine query failed",
			zap.Uint("conversation_id", conv.ID), zap.Error(err))
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return nil, &TurnError{ConversationID: conv.ID, Err: err}
	}

	turn := &model.Message{
		ConversationID: conv.ID,
		UserMessage:    message,
		AIResponse:     answer,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.conversations.AppendTurn(ctx, turn); err != nil {
		s.logger.Error("failed to persist turn",
			zap.Uint("conversation_id", conv.ID), zap.Error(err))
		metrics.TurnsTotal.WithLabelValues("error").Inc()
		return nil, &TurnError{ConversationID: conv.ID, Err: err}
	}

	metrics.TurnsTotal.WithLabelValues("success").Inc()
	s.publishTurn(conv.ID, userID)

	return &model.ChatResponse{
		Response:       answer,
		ConversationID: conv.ID,
	}, nil
}

// Conversations lists the user's conversations newest-first.
func (s *ChatService) Conversations(ctx context.Context, userID uint) ([]model.ConversationSummary, error) {
	return s.conversations.ListByUser(ctx, userID)
}

// Messages lists the turns of one of the user's conversations, ordered
// by timestamp.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID uint) ([]model.Message, error) {
	if _, err := s.conversations.GetOwned(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return s.conversations.Messages(ctx, conversationID)
}

func (s *ChatService) resolveConversation(ctx context.Context, userID uint, message string, conversationID *uint) (*model.Conversation, error) {
	if conversationID != nil {
		return s.conversations.GetOwned(ctx, *conversationID, userID)
	}

	conv := &model.Conversation{
		UserID:    userID,
		Title:     model.DeriveTitle(message),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	metrics.ConversationsTotal.Inc()
	return conv, nil
}

// publishTurn records the completed turn in the audit stream.
// Best-effort: failures are logged, never surfaced to the user.
func (s *ChatService) publishTurn(conversationID, userID uint) {
	if s.audit == nil {
		return
	}
	safego.Go(s.logger, "audit-turn", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := s.audit.PublishTurn(ctx, events.TurnCompleted{
			ConversationID: conversationID,
			UserID:         userID,
			OccurredAt:     time.Now().UTC(),
		})
		if err != nil {
			s.logger.Warn("failed to publish turn audit event", zap.Error(err))
		}
	})
}
