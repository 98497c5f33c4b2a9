package handler

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/nsf-ai/knowledge-assistant/internal/middleware"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/service"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
)

// DocumentHandler handles document ingestion endpoints.
type DocumentHandler struct {
	service   *service.IngestService
	maxUpload int64
	logger    *logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc *service.IngestService, maxUpload int64, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:   svc,
		maxUpload: maxUpload,
		logger:    log,
	}
}

// Upload handles POST /api/documents/upload
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if err := middleware.ValidateUploadFilename(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	doc, err := h.service.Upload(ctx, userID, header.Filename, contentType, data)
	if err != nil {
		h.logger.Error("document upload failed",
			zap.String("filename", header.Filename), zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.UploadResponse{
		Message:    "document uploaded successfully",
		DocumentID: doc.ID,
	})
}

// List handles GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.Documents(r.Context())
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// Process handles POST /api/documents/process/{id}
func (h *DocumentHandler) Process(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.service.Ingest(r.Context(), documentID); err != nil {
		h.logger.Error("document processing failed",
			zap.Uint("document_id", documentID), zap.Error(err))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "document processed successfully",
	})
}

// Delete handles DELETE /api/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := h.service.Delete(r.Context(), documentID); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
