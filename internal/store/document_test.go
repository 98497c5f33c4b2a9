package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
)

func newTestDocumentStore(t *testing.T) *DocumentStore {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err)
	return NewDocumentStore(db)
}

func TestMarkProcessed(t *testing.T) {
	ctx := context.Background()
	s := newTestDocumentStore(t)

	doc := &model.Document{
		Filename:   "report.pdf",
		StorageKey: "documents/abc_report.pdf",
		UploadedBy: 1,
		UploadedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Create(ctx, doc))

	require.NoError(t, s.MarkProcessed(ctx, doc.ID))

	got, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)

	// The transition only happens once.
	err = s.MarkProcessed(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyProcessed))
}

func TestDocumentDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestDocumentStore(t)

	doc := &model.Document{
		Filename:   "old.docx",
		StorageKey: "documents/abc_old.docx",
		UploadedBy: 1,
		UploadedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Create(ctx, doc))

	require.NoError(t, s.Delete(ctx, doc.ID))

	_, err := s.Get(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = s.Delete(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
