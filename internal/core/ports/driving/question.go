package driving

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// QuestionService reads generated questions and their history.
// All operations are scoped to the owner.
type QuestionService interface {
	// Get returns a single question.
	Get(ctx context.Context, ownerID, questionID string) (*domain.Question, error)

	// ListBySession returns the questions of one session, newest first.
	ListBySession(ctx context.Context, ownerID, sessionID string) ([]domain.Question, error)

	// Recent groups the owner's recent questions by session, newest session first.
	Recent(ctx context.Context, ownerID string) ([]domain.SessionSummary, error)

	// Versions returns a question's version history, highest version first.
	Versions(ctx context.Context, ownerID, questionID string) ([]domain.QuestionVersion, error)
}
