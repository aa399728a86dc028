package driving

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// RefinementService edits existing questions through an append-only version history.
type RefinementService interface {
	// Refine applies instruction to the latest version of a question and
	// appends the result as a new version.
	Refine(ctx context.Context, ownerID, questionID, instruction string) (*domain.RefineResult, error)
}
