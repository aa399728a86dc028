package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
)

// Ensure QuestionService implements the interface.
var _ driving.QuestionService = (*QuestionService)(nil)

// RecentLimit is the number of recent questions grouped by Recent.
const RecentLimit = 200

// QuestionService reads generated questions and their versions.
type QuestionService struct {
	questions driven.QuestionStore
	sessions  driven.SessionStore
}

// NewQuestionService creates a new question query service.
// The sessions store is optional; without it summaries are built from questions alone.
func NewQuestionService(questions driven.QuestionStore, sessions driven.SessionStore) *QuestionService {
	return &QuestionService{questions: questions, sessions: sessions}
}

// Get returns a question owned by ownerID.
func (s *QuestionService) Get(ctx context.Context, ownerID, questionID string) (*domain.Question, error) {
	q, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if q.OwnerID != ownerID {
		return nil, fmt.Errorf("get question: %w", domain.ErrNotFound)
	}
	return q, nil
}

// ListBySession returns the owner's questions in a session, newest first.
func (s *QuestionService) ListBySession(ctx context.Context, ownerID, sessionID string) ([]domain.Question, error) {
	questions, err := s.questions.ListBySession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session questions: %w", err)
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return questions, nil
}

// Recent groups the owner's latest questions by session, newest session first.
func (s *QuestionService) Recent(ctx context.Context, ownerID string) ([]domain.SessionSummary, error) {
	questions, err := s.questions.ListRecent(ctx, ownerID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent questions: %w", err)
	}

	var order []string
	groups := make(map[string][]domain.Question)
	for _, q := range questions {
		if _, ok := groups[q.SessionID]; !ok {
			order = append(order, q.SessionID)
		}
		groups[q.SessionID] = append(groups[q.SessionID], q)
	}

	summaries := make([]domain.SessionSummary, 0, len(order))
	for _, sessionID := range order {
		qs := groups[sessionID]
		summary := domain.SessionSummary{
			SessionID:    sessionID,
			SourceType:   qs[0].SourceType,
			QuestionType: qs[0].QuestionType,
			Quantity:     len(qs),
			CreatedAt:    qs[0].CreatedAt,
			Questions:    qs,
		}
		if s.sessions != nil {
			if session, err := s.sessions.GetSession(ctx, ownerID, sessionID); err == nil {
				summary.SourceType = session.SourceType
				summary.CreatedAt = session.CreatedAt
			}
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Versions returns the version history of a question owned by ownerID,
// highest version first.
func (s *QuestionService) Versions(ctx context.Context, ownerID, questionID string) ([]domain.QuestionVersion, error) {
	if _, err := s.Get(ctx, ownerID, questionID); err != nil {
		return nil, err
	}
	versions, err := s.questions.ListVersions(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if versions == nil {
		versions = []domain.QuestionVersion{}
	}
	return versions, nil
}
