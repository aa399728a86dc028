package driven

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// SessionStore persists generation sessions and question seeds.
type SessionStore interface {
	// CreateSession inserts a new session.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session owned by ownerID.
	GetSession(ctx context.Context, ownerID, id string) (*domain.Session, error)

	// CreateSeed inserts a question seed placeholder.
	CreateSeed(ctx context.Context, seed *domain.QuestionSeed) error

	// UpdateSeedImage records where a seed's image was stored.
	UpdateSeedImage(ctx context.Context, ownerID, id string, update domain.SeedImageUpdate) error

	// GetSeed retrieves a seed owned by ownerID.
	GetSeed(ctx context.Context, ownerID, id string) (*domain.QuestionSeed, error)
}
