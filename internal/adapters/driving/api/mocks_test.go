package api

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// mockDocumentService is a mock implementation of driving.DocumentGenerationService.
type mockDocumentService struct {
	result  *domain.DocumentGenerateResult
	err     error
	owner   string
	request domain.DocumentGenerateRequest
}

func (m *mockDocumentService) Generate(
	_ context.Context,
	ownerID string,
	req domain.DocumentGenerateRequest,
) (*domain.DocumentGenerateResult, error) {
	m.owner = ownerID
	m.request = req
	return m.result, m.err
}

// mockSimilarService is a mock implementation of driving.SimilarGenerationService.
type mockSimilarService struct {
	result  *domain.SimilarGenerateResult
	err     error
	request domain.SimilarGenerateRequest
}

func (m *mockSimilarService) Generate(
	_ context.Context,
	_ string,
	req domain.SimilarGenerateRequest,
) (*domain.SimilarGenerateResult, error) {
	m.request = req
	return m.result, m.err
}

// mockRefinementService is a mock implementation of driving.RefinementService.
type mockRefinementService struct {
	result      *domain.RefineResult
	err         error
	questionID  string
	instruction string
}

func (m *mockRefinementService) Refine(_ context.Context, _, questionID, instruction string) (*domain.RefineResult, error) {
	m.questionID = questionID
	m.instruction = instruction
	return m.result, m.err
}

// mockQuestionService is a mock implementation of driving.QuestionService.
type mockQuestionService struct {
	question  *domain.Question
	questions []domain.Question
	summaries []domain.SessionSummary
	versions  []domain.QuestionVersion
	err       error
}

func (m *mockQuestionService) Get(_ context.Context, _, _ string) (*domain.Question, error) {
	return m.question, m.err
}

func (m *mockQuestionService) ListBySession(_ context.Context, _, _ string) ([]domain.Question, error) {
	return m.questions, m.err
}

func (m *mockQuestionService) Recent(_ context.Context, _ string) ([]domain.SessionSummary, error) {
	return m.summaries, m.err
}

func (m *mockQuestionService) Versions(_ context.Context, _, _ string) ([]domain.QuestionVersion, error) {
	return m.versions, m.err
}
