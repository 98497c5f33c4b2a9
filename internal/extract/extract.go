// Package extract normalizes uploaded document formats into plain text.
package extract

import (
	"bytes"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"

	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
)

// Text converts uploaded binary content into plain text. Dispatch is
// purely on the file extension; the conversion has no side effects and
// is deterministic for identical bytes.
func Text(content []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(content)
	case ".doc", ".docx":
		return docxText(content)
	default:
		return "", apperr.Validation("unsupported file extension: only PDF and DOC/DOCX are supported")
	}
}

func pdfText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "failed to parse PDF", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", apperr.Wrap(apperr.KindValidation, "failed to extract PDF text", err)
		}
		pages = append(pages, text)
	}

	return joinPages(pages), nil
}

func docxText(content []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "failed to parse DOCX", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}

	return joinParagraphs(paragraphs), nil
}

// joinPages concatenates page texts in physical page order with newline
// separators and trims surrounding whitespace.
func joinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n"))
}

// joinParagraphs drops empty and whitespace-only paragraphs, trims the
// rest, and joins them with newlines.
func joinParagraphs(paragraphs []string) string {
	parts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n")
}
