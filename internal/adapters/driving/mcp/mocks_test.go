package mcp

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

const testOwner = "6f1c2a64-3b0e-4c36-9a43-3e7b5d1f8a10"

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
	result *domain.RefineResult
	err    error
}

func (m *mockRefinementService) Refine(_ context.Context, _, _, _ string) (*domain.RefineResult, error) {
	return m.result, m.err
}

// mockQuestionService is a mock implementation of driving.QuestionService.
type mockQuestionService struct {
	question  *domain.Question
	questions []domain.Question
	summaries []domain.SessionSummary
	versions  []domain.QuestionVersion
	err       error
	owner     string
}

func (m *mockQuestionService) Get(_ context.Context, ownerID, _ string) (*domain.Question, error) {
	m.owner = ownerID
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

type testPorts struct {
	documents  *mockDocumentService
	similar    *mockSimilarService
	refinement *mockRefinementService
	questions  *mockQuestionService
}

func newTestPorts() (*Ports, *testPorts) {
	tp := &testPorts{
		documents:  &mockDocumentService{},
		similar:    &mockSimilarService{},
		refinement: &mockRefinementService{},
		questions:  &mockQuestionService{},
	}
	return &Ports{
		Documents:  tp.documents,
		Similar:    tp.similar,
		Refinement: tp.refinement,
		Questions:  tp.questions,
		OwnerID:    testOwner,
	}, tp
}
