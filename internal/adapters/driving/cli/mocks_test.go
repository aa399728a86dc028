package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

const testOwner = "6f1c2a64-3b0e-4c36-9a43-3e7b5d1f8a10"

func TestMain(m *testing.M) {
	bootstrap = nil
	os.Exit(m.Run())
}

// execute runs the root command with args and resets flag state afterwards.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// withServices installs mocks for the duration of a test.
func withServices(t *testing.T) *mockServices {
	t.Helper()
	m := &mockServices{
		settings:   &mockSettingsService{owner: testOwner, settings: domain.DefaultAppSettings()},
		documents:  &mockDocumentService{},
		similar:    &mockSimilarService{},
		refinement: &mockRefinementService{},
		questions:  &mockQuestionService{},
	}
	settingsService = m.settings
	documentService = m.documents
	similarService = m.similar
	refinementService = m.refinement
	questionService = m.questions
	t.Cleanup(func() {
		settingsService = nil
		documentService = nil
		similarService = nil
		refinementService = nil
		questionService = nil
	})
	return m
}

type mockServices struct {
	settings   *mockSettingsService
	documents  *mockDocumentService
	similar    *mockSimilarService
	refinement *mockRefinementService
	questions  *mockQuestionService
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	owner       string
	validateErr error
	setErr      error
	set         map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"llm.api_key", "llm.model", "owner.id"}
}

func (m *mockSettingsService) OwnerID() (string, error) {
	return m.owner, nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

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
