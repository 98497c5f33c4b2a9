package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nsf-ai/knowledge-assistant/internal/blob"
	"github.com/nsf-ai/knowledge-assistant/internal/engine"
	"github.com/nsf-ai/knowledge-assistant/internal/events"
	"github.com/nsf-ai/knowledge-assistant/internal/extract"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/store"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
	"github.com/nsf-ai/knowledge-assistant/pkg/metrics"
	"github.com/nsf-ai/knowledge-assistant/pkg/safego"
)

// IngestService coordinates document upload and ingestion: blob
// storage, normalization, the metadata envelope and the knowledge
// engine insert.
type IngestService struct {
	documents   *store.DocumentStore
	blobs       blob.Store
	engine      engine.Engine
	audit       *events.Publisher
	logger      *logger.Logger
	extractText func(content []byte, filename string) (string, error)
}

// NewIngestService creates an ingest service.
func NewIngestService(
	documents *store.DocumentStore,
	blobs blob.Store,
	eng engine.Engine,
	audit *events.Publisher,
	log *logger.Logger,
) *IngestService {
	return &IngestService{
		documents:   documents,
		blobs:       blobs,
		engine:      eng,
		audit:       audit,
		logger:      log,
		extractText: extract.Text,
	}
}

// Upload stores the raw bytes and records the document. The record
// starts unprocessed; indexing happens in a separate Ingest call.
func (s *IngestService) Upload(ctx context.Context, userID uint, filename, contentType string, data []byte) (*model.Document, error) {
	key := blob.NewKey(filename)
	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	doc := &model.Document{
		Filename:    filename,
		StorageKey:  key,
		UploadedBy:  userID,
		FileSize:    int64(len(data)),
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	metrics.DocumentsUploaded.Inc()
	return doc, nil
}

// Ingest processes one uploaded document: fetch bytes, normalize,
// envelope, insert into the engine, then flip the processed flag. Any
// failure leaves processed=false and the document retryable by
// re-invoking Ingest; re-invoking on an already processed document is
// rejected so the engine never receives a duplicate insert.
func (s *IngestService) Ingest(ctx context.Context, documentID uint) error {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Processed {
		metrics.IngestTotal.WithLabelValues("already_processed").Inc()
		return apperr.AlreadyProcessed(fmt.Sprintf("document %d already processed", doc.ID))
	}

	data, err := s.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		return s.fail(doc, err)
	}

	text, err := s.extractText(data, doc.Filename)
	if err != nil {
		return s.fail(doc, err)
	}

	if err := s.engine.Insert(ctx, envelope(doc, text)); err != nil {
		return s.fail(doc, err)
	}

	if err := s.documents.MarkProcessed(ctx, doc.ID); err != nil {
		return s.fail(doc, err)
	}

	metrics.IngestTotal.WithLabelValues("success").Inc()
	s.publishDocument(doc, true, "")
	return nil
}

// Documents lists all document records newest-first.
func (s *IngestService) Documents(ctx context.Context) ([]model.Document, error) {
	return s.documents.List(ctx)
}

// Delete removes a document's bytes and its record.
func (s *IngestService) Delete(ctx context.Context, documentID uint) error {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("failed to delete document blob",
			zap.Uint("document_id", doc.ID), zap.Error(err))
	}

	return s.documents.Delete(ctx, doc.ID)
}

// envelope prefixes the normalized text with a metadata header so the
// engine indexes provenance alongside content.
func envelope(doc *model.Document, text string) string {
	return fmt.Sprintf(`DOCUMENT METADATA:
- Filename: %s
- Uploaded: %s
- File Size: %d bytes

DOCUMENT CONTENT:
%s
`, doc.Filename, doc.UploadedAt.Format(time.RFC3339), doc.FileSize, text)
}

func (s *IngestService) fail(doc *model.Document, err error) error {
	s.logger.Error("document ingestion failed",
		zap.Uint("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Error(err),
	)
	metrics.IngestTotal.WithLabelValues("error").Inc()
	s.publishDocument(doc, false, err.Error())
	return err
}

// publishDocument records the ingestion outcome in the audit stream.
func (s *IngestService) publishDocument(doc *model.Document, success bool, reason string) {
	if s.audit == nil {
		return
	}
	docID, filename := doc.ID, doc.Filename
	safego.Go(s.logger, "audit-document", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := s.audit.PublishDocument(ctx, events.DocumentProcessed{
			DocumentID: docID,
			Filename:   filename,
			Success:    success,
			Reason:     reason,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			s.logger.Warn("failed to publish document audit event", zap.Error(err))
		}
	})
}
