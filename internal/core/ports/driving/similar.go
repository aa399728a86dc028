package driving

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// SimilarGenerationService clones new questions from an image of an existing one.
type SimilarGenerationService interface {
	// Generate stores the seed image and returns questions similar to it.
	Generate(ctx context.Context, ownerID string, req domain.SimilarGenerateRequest) (*domain.SimilarGenerateResult, error)
}
