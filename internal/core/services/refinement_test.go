package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/storage/memory"
	"github.com/busraauz/ai-quest-platform/internal/core/agent"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

func storedQuestion(t *testing.T, store *memory.QuestionStore, id, ownerID string) domain.Question {
	t.Helper()
	score := 0.7
	q := domain.Question{
		QuestionContent: domain.QuestionContent{
			QuestionType:    domain.QuestionMCQ,
			QuestionText:    "What does the mitochondrion produce?",
			Options:         map[string]string{"A": "ATP", "B": "DNA", "C": "RNA", "D": "Lipids"},
			CorrectAnswer:   "A",
			Explanation:     "Mitochondria produce ATP through respiration.",
			ConfidenceScore: &score,
		},
		ID:         id,
		OwnerID:    ownerID,
		SessionID:  "session-1",
		SourceType: domain.SourceDocument,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.InsertQuestions(context.Background(), []domain.Question{q}))
	return q
}

func newRefinementService(store *memory.QuestionStore, model *fakeChatModel) *RefinementService {
	protocol := agent.Protocol{Model: model, MaxRetries: 2, Temperature: 0.2}
	return NewRefinementService(store, agent.NewRefinementAgent(protocol, agent.NewPrompts(nil)))
}

func TestRefinementService_FirstRefinementSeedsVersionOne(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	original := storedQuestion(t, store, "q1", "owner-1")
	model := &fakeChatModel{reply: func(int, []driven.ChatMessage) (string, error) {
		return questionJSON(t, "Which organelle produces ATP for the cell?"), nil
	}}
	service := newRefinementService(store, model)

	result, err := service.Refine(ctx, "owner-1", "q1", "  make it clearer  ")
	require.NoError(t, err)
	assert.Equal(t, "q1", result.QuestionID)
	assert.Equal(t, 2, result.Version)
	assert.Equal(t, "Which organelle produces ATP for the cell?", result.Question.QuestionText)

	versions, err := store.ListVersions(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, "make it clearer", versions[0].Instruction)
	assert.Equal(t, 1, versions[1].Version)
	assert.Equal(t, domain.SeedInstruction, versions[1].Instruction)
	assert.Equal(t, original.QuestionContent, versions[1].Content)

	// The refinement prompt carries the seeded content.
	assert.Contains(t, userText(model.lastCall()), original.QuestionText)

	// The question row is untouched.
	row, err := store.GetQuestion(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, original.QuestionText, row.QuestionText)
}

func TestRefinementService_VersionsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	storedQuestion(t, store, "q1", "owner-1")
	model := &fakeChatModel{reply: func(i int, _ []driven.ChatMessage) (string, error) {
		return questionJSON(t, []string{"First edited question?", "Second edited question?", "Third edited question?"}[i]), nil
	}}
	service := newRefinementService(store, model)

	for want := 2; want <= 4; want++ {
		result, err := service.Refine(ctx, "owner-1", "q1", "edit again")
		require.NoError(t, err)
		assert.Equal(t, want, result.Version)
	}

	// Each refinement starts from the previous one.
	assert.Contains(t, userText(model.lastCall()), "Second edited question?")

	versions, err := store.ListVersions(ctx, "q1")
	require.NoError(t, err)
	got := make([]int, len(versions))
	for i, v := range versions {
		got[i] = v.Version
	}
	assert.Equal(t, []int{4, 3, 2, 1}, got)
}

func TestRefinementService_NotFoundAndForbidden(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	storedQuestion(t, store, "q1", "owner-1")
	model := &fakeChatModel{}
	service := newRefinementService(store, model)

	_, err := service.Refine(ctx, "owner-1", "missing", "edit it")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.Refine(ctx, "owner-2", "q1", "edit it")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, domain.KindForbidden, domain.ErrorKind(err))

	assert.Equal(t, 0, model.callCount())
	versions, err := store.ListVersions(ctx, "q1")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestRefinementService_InstructionBounds(t *testing.T) {
	service := newRefinementService(memory.NewQuestionStore(), &fakeChatModel{})

	for _, instruction := range []string{"", " a ", string(make([]byte, 501))} {
		_, err := service.Refine(context.Background(), "owner-1", "q1", instruction)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestRefinementService_ExhaustionAppendsNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	storedQuestion(t, store, "q1", "owner-1")
	model := &fakeChatModel{reply: func(int, []driven.ChatMessage) (string, error) {
		return `{"question": {"question_type": "mcq"}}`, nil
	}}
	service := newRefinementService(store, model)

	_, err := service.Refine(ctx, "owner-1", "q1", "edit it")

	var exhausted *domain.AgentExhaustedError
	require.True(t, errors.As(err, &exhausted))
	var schemaErr *domain.SchemaValidationError
	assert.True(t, errors.As(err, &schemaErr))

	versions, err := store.ListVersions(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, versions, 1, "only the seed version exists")
	assert.Equal(t, domain.SeedInstruction, versions[0].Instruction)
}

// racingStore lets a competing version land between LatestVersion and InsertVersion.
type racingStore struct {
	*memory.QuestionStore
	races int
}

func (s *racingStore) InsertVersion(ctx context.Context, v *domain.QuestionVersion) error {
	if v.Version > 1 && s.races > 0 {
		s.races--
		competing := *v
		competing.ID = "competitor"
		competing.Instruction = "competing edit"
		if err := s.QuestionStore.InsertVersion(ctx, &competing); err != nil {
			return err
		}
	}
	return s.QuestionStore.InsertVersion(ctx, v)
}

func TestRefinementService_ConflictIsRetriedOnce(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{QuestionStore: memory.NewQuestionStore(), races: 1}
	storedQuestion(t, store.QuestionStore, "q1", "owner-1")
	model := &fakeChatModel{reply: func(int, []driven.ChatMessage) (string, error) {
		return questionJSON(t, "Which organelle produces ATP?"), nil
	}}
	protocol := agent.Protocol{Model: model, MaxRetries: 2}
	service := NewRefinementService(store, agent.NewRefinementAgent(protocol, agent.NewPrompts(nil)))

	result, err := service.Refine(ctx, "owner-1", "q1", "edit it")

	require.NoError(t, err)
	assert.Equal(t, 3, result.Version)
	assert.Equal(t, 2, model.callCount(), "the edit is redone on the newer version")
}

func TestRefinementService_SecondConflictSurfaces(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{QuestionStore: memory.NewQuestionStore(), races: 2}
	storedQuestion(t, store.QuestionStore, "q1", "owner-1")
	model := &fakeChatModel{reply: func(int, []driven.ChatMessage) (string, error) {
		return questionJSON(t, "Which organelle produces ATP?"), nil
	}}
	protocol := agent.Protocol{Model: model, MaxRetries: 2}
	service := NewRefinementService(store, agent.NewRefinementAgent(protocol, agent.NewPrompts(nil)))

	_, err := service.Refine(ctx, "owner-1", "q1", "edit it")

	var conflict *domain.VersionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, domain.KindVersionConflict, domain.ErrorKind(err))
}

func TestRefinementService_ConcurrentRefinements(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	storedQuestion(t, store, "q1", "owner-1")
	model := &fakeChatModel{reply: func(int, []driven.ChatMessage) (string, error) {
		return questionJSON(t, "Which organelle produces ATP?"), nil
	}}
	service := newRefinementService(store, model)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.Refine(ctx, "owner-1", "q1", "edit it")
			mu.Lock()
			defer mu.Unlock()
			if assert.NoError(t, err) {
				results = append(results, result.Version)
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{2, 3}, results)
	versions, err := store.ListVersions(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, 3-i, v.Version)
	}
}
