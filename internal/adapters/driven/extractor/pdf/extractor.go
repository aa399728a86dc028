// Package pdf extracts plain text from uploaded PDF documents.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads PDF text page by page with ledongthuc/pdf.
type Extractor struct{}

// New creates a new PDF text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the text of every page joined by newlines. Pages whose
// text cannot be decoded are skipped; a document that cannot be opened at
// all, including an encrypted one, fails with *domain.ExtractionError.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &domain.ExtractionError{Err: errors.New("empty file")}
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &domain.ExtractionError{Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", &domain.ExtractionError{Err: errors.New("document is encrypted")}
		}
		return "", &domain.ExtractionError{Err: err}
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Skipping unreadable PDF page %d: %v", i, err)
			continue
		}
		pages = append(pages, pageText)
	}

	logger.Debug("Extracted %d/%d PDF pages", len(pages), total)
	return strings.Join(pages, "\n"), nil
}
