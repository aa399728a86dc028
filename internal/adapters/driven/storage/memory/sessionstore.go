package memory

import (
	"context"
	"sync"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	seeds    map[string]domain.QuestionSeed
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		seeds:    make(map[string]domain.QuestionSeed),
	}
}

// CreateSession stores a new session.
func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// GetSession retrieves a session owned by ownerID.
func (s *SessionStore) GetSession(_ context.Context, ownerID, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || session.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// CreateSeed stores a question seed placeholder.
func (s *SessionStore) CreateSeed(_ context.Context, seed *domain.QuestionSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeds[seed.ID] = *seed
	return nil
}

// UpdateSeedImage records where a seed's image was stored.
func (s *SessionStore) UpdateSeedImage(_ context.Context, ownerID, id string, update domain.SeedImageUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed, ok := s.seeds[id]
	if !ok || seed.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	seed.ImagePath = update.Path
	seed.ImageMime = update.Mime
	seed.ImageSize = update.Size
	s.seeds[id] = seed
	return nil
}

// GetSeed retrieves a seed owned by ownerID.
func (s *SessionStore) GetSeed(_ context.Context, ownerID, id string) (*domain.QuestionSeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seed, ok := s.seeds[id]
	if !ok || seed.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &seed, nil
}
