package driving

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// DocumentGenerationService generates questions from an uploaded PDF.
type DocumentGenerationService interface {
	// Generate ingests the document, retrieves the most relevant chunks and
	// returns the generated questions. Nothing is persisted as questions unless
	// the whole set validates.
	Generate(ctx context.Context, ownerID string, req domain.DocumentGenerateRequest) (*domain.DocumentGenerateResult, error)
}
