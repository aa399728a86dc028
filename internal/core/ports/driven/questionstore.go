package driven

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// QuestionStore persists generated questions and their version history.
type QuestionStore interface {
	// InsertQuestions stores all questions atomically.
	InsertQuestions(ctx context.Context, questions []domain.Question) error

	// GetQuestion retrieves a question by ID regardless of owner, so callers
	// can distinguish a missing question from one owned by someone else.
	// Returns domain.ErrNotFound if it does not exist.
	GetQuestion(ctx context.Context, id string) (*domain.Question, error)

	// ListBySession returns a session's questions, newest first.
	ListBySession(ctx context.Context, ownerID, sessionID string) ([]domain.Question, error)

	// ListRecent returns at most limit of the owner's questions, newest first.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.Question, error)

	// LatestVersion returns the highest version of a question.
	// Returns domain.ErrNotFound if the question has no versions yet.
	LatestVersion(ctx context.Context, questionID string) (*domain.QuestionVersion, error)

	// InsertVersion appends a version. The insert succeeds only if no row with
	// the same (question_id, version) exists; otherwise it returns
	// *domain.VersionConflictError and writes nothing.
	InsertVersion(ctx context.Context, version *domain.QuestionVersion) error

	// ListVersions returns a question's versions, highest first.
	ListVersions(ctx context.Context, questionID string) ([]domain.QuestionVersion, error)
}
