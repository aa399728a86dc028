package driven

import "context"

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	// Extract returns the plain text of data. Unreadable or encrypted input
	// fails with *domain.ExtractionError. Empty text is a valid result.
	Extract(ctx context.Context, data []byte) (string, error)
}
