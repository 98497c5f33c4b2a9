package model

import (
	"time"
)

// Document represents an uploaded source document. Processed flips
// false to true exactly once, after normalization and a successful
// knowledge engine insert, and never reverts.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Filename    string    `gorm:"not null" json:"filename"`
	StorageKey  string    `gorm:"not null" json:"-"`
	Processed   bool      `gorm:"default:false" json:"processed"`
	UploadedBy  uint      `gorm:"index" json:"uploaded_by"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// UploadResponse is the response to a document upload.
type UploadResponse struct {
	Message    string `json:"message"`
	DocumentID uint   `json:"document_id"`
}

// SystemStats is the admin system overview.
type SystemStats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalConversations int64 `json:"total_conversations"`
	TotalMessages      int64 `json:"total_messages"`
	TotalDocuments     int64 `json:"total_documents"`
	ProcessedDocuments int64 `json:"processed_documents"`
}
