package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
)

// AdminStore answers aggregate queries for the admin surface.
type AdminStore struct {
	db *gorm.DB
}

// NewAdminStore creates an admin store.
func NewAdminStore(db *gorm.DB) *AdminStore {
	return &AdminStore{db: db}
}

// SystemStats returns system-wide totals.
func (s *AdminStore) SystemStats(ctx context.Context) (*model.SystemStats, error) {
	stats := &model.SystemStats{}
	db := s.db.WithContext(ctx)

	counts := []struct {
		model any
		dest  *int64
		where []any
	}{
		{&model.User{}, &stats.TotalUsers, nil},
		{&model.Conversation{}, &stats.TotalConversations, nil},
		{&model.Message{}, &stats.TotalMessages, nil},
		{&model.Document{}, &stats.TotalDocuments, nil},
		{&model.Document{}, &stats.ProcessedDocuments, []any{"processed = ?", true}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, apperr.Internal("failed to collect system stats", err)
		}
	}
	return stats, nil
}

// UserStats returns per-user conversation counts and last activity.
func (s *AdminStore) UserStats(ctx context.Context) ([]model.UserStats, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}

	stats := make([]model.UserStats, 0, len(users))
	for _, user := range users {
		var count int64
		err := s.db.WithContext(ctx).
			Model(&model.Conversation{}).
			Where("user_id = ?", user.ID).
			Count(&count).Error
		if err != nil {
			return nil, apperr.Internal("failed to count conversations", err)
		}

		entry := model.UserStats{
			ID:                user.ID,
			Email:             user.Email,
			Role:              user.Role,
			ConversationCount: count,
		}

		var last model.Conversation
		err = s.db.WithContext(ctx).
			Where("user_id = ?", user.ID).
			Order("created_at DESC").
			First(&last).Error
		switch {
		case err == nil:
			entry.LastActive = &last.CreatedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No conversations yet; LastActive stays unset.
		default:
			return nil, apperr.Internal("failed to load last conversation", err)
		}

		stats = append(stats, entry)
	}
	return stats, nil
}

// AllConversations returns every conversation newest-first, with the
// owner's email and message count.
func (s *AdminStore) AllConversations(ctx context.Context) ([]model.ConversationAdmin, error) {
	var convs []model.Conversation
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, apperr.Internal("failed to list conversations", err)
	}

	result := make([]model.ConversationAdmin, 0, len(convs))
	for _, conv := range convs {
		var user model.User
		if err := s.db.WithContext(ctx).First(&user, conv.UserID).Error; err != nil {
			user.Email = ""
		}

		var count int64
		err := s.db.WithContext(ctx).
			Model(&model.Message{}).
			Where("conversation_id = ?", conv.ID).
			Count(&count).Error
		if err != nil {
			return nil, apperr.Internal("failed to count messages", err)
		}

		result = append(result, model.ConversationAdmin{
			ID:           conv.ID,
			UserEmail:    user.Email,
			Title:        conv.Title,
			MessageCount: count,
			CreatedAt:    conv.CreatedAt,
		})
	}
	return result, nil
}
