package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
)

func newTestConversationStore(t *testing.T) *ConversationStore {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err)
	return NewConversationStore(db)
}

func seedConversation(t *testing.T, s *ConversationStore, userID uint, turns int) *model.Conversation {
	t.Helper()
	ctx := context.Background()

	conv := &model.Conversation{
		UserID:    userID,
		Title:     "seeded",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Create(ctx, conv))

	base := time.Now().UTC()
	for i := 1; i <= turns; i++ {
		require.NoError(t, s.AppendTurn(ctx, &model.Message{
			ConversationID: conv.ID,
			UserMessage:    fmt.Sprintf("question %d", i),
			AIResponse:     fmt.Sprintf("answer %d", i),
			Timestamp:      base.Add(time.Duration(i) * time.Second),
		}))
	}
	return conv
}

func TestLastTurns(t *testing.T) {
	ctx := context.Background()
	s := newTestConversationStore(t)

	t.Run("returns the most recent turns oldest-first", func(t *testing.T) {
		conv := seedConversation(t, s, 1, 5)

		turns, err := s.LastTurns(ctx, conv.ID, 3)
		require.NoError(t, err)
		require.Len(t, turns, 3)
		assert.Equal(t, "question 3", turns[0].UserMessage)
		assert.Equal(t, "question 4", turns[1].UserMessage)
		assert.Equal(t, "question 5", turns[2].UserMessage)
		assert.Equal(t, "answer 5", turns[2].AIResponse)
	})

	t.Run("short conversations return everything", func(t *testing.T) {
		conv := seedConversation(t, s, 1, 2)

		turns, err := s.LastTurns(ctx, conv.ID, 3)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, "question 1", turns[0].UserMessage)
	})

	t.Run("empty conversation returns no turns", func(t *testing.T) {
		conv := seedConversation(t, s, 1, 0)

		turns, err := s.LastTurns(ctx, conv.ID, 3)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})
}

func TestGetOwned(t *testing.T) {
	ctx := context.Background()
	s := newTestConversationStore(t)
	conv := seedConversation(t, s, 1, 1)

	got, err := s.GetOwned(ctx, conv.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)

	_, err = s.GetOwned(ctx, conv.ID, 2)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListByUser(t *testing.T) {
	ctx := context.Background()
	s := newTestConversationStore(t)

	seedConversation(t, s, 1, 2)
	seedConversation(t, s, 2, 1)

	summaries, err := s.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].MessageCount)
}
