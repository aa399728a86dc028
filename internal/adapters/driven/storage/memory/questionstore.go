package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// Ensure QuestionStore implements the interface.
var _ driven.QuestionStore = (*QuestionStore)(nil)

type storedQuestion struct {
	question domain.Question
	seq      int
}

// QuestionStore is an in-memory implementation of driven.QuestionStore.
// Version appends are check-and-insert under a single lock.
type QuestionStore struct {
	mu        sync.RWMutex
	seq       int
	questions map[string]storedQuestion
	versions  map[string][]domain.QuestionVersion // by question ID, ascending
}

// NewQuestionStore creates a new in-memory question store.
func NewQuestionStore() *QuestionStore {
	return &QuestionStore{
		questions: make(map[string]storedQuestion),
		versions:  make(map[string][]domain.QuestionVersion),
	}
}

// InsertQuestions stores all questions.
func (s *QuestionStore) InsertQuestions(_ context.Context, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		s.seq++
		s.questions[q.ID] = storedQuestion{question: q, seq: s.seq}
	}
	return nil
}

// GetQuestion retrieves a question by ID regardless of owner.
func (s *QuestionStore) GetQuestion(_ context.Context, id string) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.questions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	q := stored.question
	return &q, nil
}

// ListBySession returns a session's questions, newest first.
func (s *QuestionStore) ListBySession(_ context.Context, ownerID, sessionID string) ([]domain.Question, error) {
	return s.list(func(q domain.Question) bool {
		return q.OwnerID == ownerID && q.SessionID == sessionID
	}, 0), nil
}

// ListRecent returns at most limit of the owner's questions, newest first.
func (s *QuestionStore) ListRecent(_ context.Context, ownerID string, limit int) ([]domain.Question, error) {
	return s.list(func(q domain.Question) bool { return q.OwnerID == ownerID }, limit), nil
}

// list orders by creation time descending; questions created together keep
// their insertion order.
func (s *QuestionStore) list(match func(domain.Question) bool, limit int) []domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stored []storedQuestion
	for _, sq := range s.questions {
		if match(sq.question) {
			stored = append(stored, sq)
		}
	}
	sort.Slice(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.question.CreatedAt.Equal(b.question.CreatedAt) {
			return a.question.CreatedAt.After(b.question.CreatedAt)
		}
		return a.seq < b.seq
	})
	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	out := make([]domain.Question, len(stored))
	for i, sq := range stored {
		out[i] = sq.question
	}
	return out
}

// LatestVersion returns the highest version of a question.
func (s *QuestionStore) LatestVersion(_ context.Context, questionID string) (*domain.QuestionVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.versions[questionID]
	if len(versions) == 0 {
		return nil, domain.ErrNotFound
	}
	v := versions[len(versions)-1]
	return &v, nil
}

// InsertVersion appends a version unless that version number already exists.
func (s *QuestionStore) InsertVersion(_ context.Context, version *domain.QuestionVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.versions[version.QuestionID]
	for _, v := range versions {
		if v.Version == version.Version {
			return &domain.VersionConflictError{QuestionID: version.QuestionID, Version: version.Version}
		}
	}

	versions = append(versions, *version)
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	s.versions[version.QuestionID] = versions
	return nil
}

// ListVersions returns a question's versions, highest first.
func (s *QuestionStore) ListVersions(_ context.Context, questionID string) ([]domain.QuestionVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.versions[questionID]
	out := make([]domain.QuestionVersion, len(versions))
	for i, v := range versions {
		out[len(versions)-1-i] = v
	}
	return out, nil
}
