package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
)

func newAdminFixture(t *testing.T) (*gorm.DB, *AdminStore) {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err)
	return db, NewAdminStore(db)
}

func TestUserStats(t *testing.T) {
	ctx := context.Background()
	db, admin := newAdminFixture(t)

	users := NewUserStore(db)
	active := &model.User{Email: "active@example.org", PasswordHash: "x", Role: model.RoleStaff, IsActive: true}
	idle := &model.User{Email: "idle@example.org", PasswordHash: "x", Role: model.RoleStaff, IsActive: true}
	require.NoError(t, users.Create(ctx, active))
	require.NoError(t, users.Create(ctx, idle))

	conversations := NewConversationStore(db)
	require.NoError(t, conversations.Create(ctx, &model.Conversation{
		UserID:    active.ID,
		Title:     "only conversation",
		CreatedAt: time.Now().UTC(),
	}))

	stats, err := admin.UserStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byEmail := map[string]model.UserStats{}
	for _, s := range stats {
		byEmail[s.Email] = s
	}

	assert.Equal(t, int64(1), byEmail["active@example.org"].ConversationCount)
	assert.NotNil(t, byEmail["active@example.org"].LastActive)

	// A user with no conversations is still reported, with no last
	// activity and no error.
	assert.Equal(t, int64(0), byEmail["idle@example.org"].ConversationCount)
	assert.Nil(t, byEmail["idle@example.org"].LastActive)
}

func TestSystemStats(t *testing.T) {
	ctx := context.Background()
	db, admin := newAdminFixture(t)

	require.NoError(t, NewUserStore(db).Create(ctx, &model.User{
		Email: "a@example.org", PasswordHash: "x", Role: model.RoleAdmin, IsActive: true,
	}))

	documents := NewDocumentStore(db)
	doc := &model.Document{Filename: "a.pdf", StorageKey: "documents/x_a.pdf", UploadedAt: time.Now().UTC()}
	require.NoError(t, documents.Create(ctx, doc))
	require.NoError(t, documents.Create(ctx, &model.Document{
		Filename: "b.pdf", StorageKey: "documents/x_b.pdf", UploadedAt: time.Now().UTC(),
	}))
	require.NoError(t, documents.MarkProcessed(ctx, doc.ID))

	stats, err := admin.SystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalDocuments)
	assert.Equal(t, int64(1), stats.ProcessedDocuments)
}
