package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
)

// ConversationStore persists conversations and their turns.
type ConversationStore struct {
	db *gorm.DB
}

// NewConversationStore creates a conversation store.
func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Create inserts a new conversation and fills in its identity.
func (s *ConversationStore) Create(ctx context.Context, conv *model.Conversation) error {
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return apperr.Internal("failed to create conversation", err)
	}
	return nil
}

// GetOwned loads a conversation and verifies ownership. A conversation
// that exists but belongs to another user is reported as not found, so
// existence never leaks across owners.
func (s *ConversationStore) GetOwned(ctx context.Context, id, userID uint) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, apperr.Internal("failed to load conversation", err)
	}
	return &conv, nil
}

// ListByUser returns the user's conversations newest-first, with
// message counts.
func (s *ConversationStore) ListByUser(ctx context.Context, userID uint) ([]model.ConversationSummary, error) {
	var convs []model.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, apperr.Internal("failed to list conversations", err)
	}

	summaries := make([]model.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		count, err := s.countMessages(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.ConversationSummary{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			MessageCount: count,
		})
	}
	return summaries, nil
}

// LastTurns returns the most recent limit turns of a conversation,
// oldest-first. Storage order is newest-first for the "last N" query;
// the result is reversed before returning.
func (s *ConversationStore) LastTurns(ctx context.Context, conversationID uint, limit int) ([]model.Turn, error) {
	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, apperr.Internal("failed to load recent turns", err)
	}

	turns := make([]model.Turn, len(msgs))
	for i, msg := range msgs {
		turns[len(msgs)-1-i] = model.Turn{
			UserMessage: msg.UserMessage,
			AIResponse:  msg.AIResponse,
		}
	}
	return turns, nil
}

// AppendTurn persists one complete turn. User and assistant text land
// in a single row, so readers never observe a half-written turn.
func (s *ConversationStore) AppendTurn(ctx context.Context, msg *model.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return apperr.Internal("failed to append turn", err)
	}
	return nil
}

// Messages returns all turns of a conversation ordered by timestamp.
func (s *ConversationStore) Messages(ctx context.Context, conversationID uint) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, apperr.Internal("failed to load messages", err)
	}
	return msgs, nil
}

func (s *ConversationStore) countMessages(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Internal("failed to count messages", err)
	}
	return count, nil
}
