package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
)

// DocumentStore persists document records.
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a document store.
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create inserts a new document record and fills in its identity.
func (s *DocumentStore) Create(ctx context.Context, doc *model.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return apperr.Internal("failed to create document", err)
	}
	return nil
}

// Get loads a document by id.
func (s *DocumentStore) Get(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("document not found")
		}
		return nil, apperr.Internal("failed to load document", err)
	}
	return &doc, nil
}

// List returns all documents newest-first.
func (s *DocumentStore) List(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	err := s.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, apperr.Internal("failed to list documents", err)
	}
	return docs, nil
}

// MarkProcessed flips the processed flag. The flag only moves false to
// true; the WHERE clause keeps a concurrent second ingest from
// double-counting the transition.
func (s *DocumentStore) MarkProcessed(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND processed = ?", id, false).
		Update("processed", true)
	if result.Error != nil {
		return apperr.Internal("failed to mark document processed", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.AlreadyProcessed("document already processed")
	}
	return nil
}

// Delete removes a document record.
func (s *DocumentStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Document{}, id)
	if result.Error != nil {
		return apperr.Internal("failed to delete document", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("document not found")
	}
	return nil
}
