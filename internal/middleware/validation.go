package middleware

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateUploadFilename checks the declared filename of an upload.
func ValidateUploadFilename(filename string) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".doc", ".docx":
		return nil
	default:
		return errors.New("only PDF and DOC/DOCX files are supported")
	}
}
