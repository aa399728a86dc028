package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func mcqContent(text string) domain.QuestionContent {
	return domain.QuestionContent{
		QuestionType:  domain.QuestionMCQ,
		QuestionText:  text,
		Options:       map[string]string{"A": "3", "B": "4", "C": "5", "D": "6"},
		CorrectAnswer: "B",
		Explanation:   "2+2 is 4",
	}
}

func TestGenerateCmd_RequiresApp(t *testing.T) {
	assert.True(t, requiresApp(generateDocumentCmd))
	assert.True(t, requiresApp(questionRecentCmd))
	assert.False(t, requiresApp(settingsShowCmd))
	assert.False(t, requiresApp(versionCmd))
}

func TestGenerateDocument(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		path := writeTempFile(t, "notes.pdf", []byte("%PDF-1.4"))
		_, err := execute(t, "generate", "document", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document generation service not configured")
	})

	t.Run("prints questions", func(t *testing.T) {
		m := withServices(t)
		m.documents.result = &domain.DocumentGenerateResult{
			SessionID:  "sess-1",
			DocumentID: "doc-1",
			Questions:  []domain.Question{{ID: "q-1", QuestionContent: mcqContent("What is 2+2?")}},
		}
		path := writeTempFile(t, "notes.pdf", []byte("%PDF-1.4"))

		out, err := execute(t, "generate", "document", path, "--quantity", "5", "--type", "open")

		require.NoError(t, err)
		assert.Equal(t, testOwner, m.documents.owner)
		assert.Equal(t, "notes.pdf", m.documents.request.Filename)
		assert.Equal(t, 5, m.documents.request.Quantity)
		assert.Equal(t, domain.QuestionOpen, m.documents.request.QuestionType)
		assert.Contains(t, out, "Session:  sess-1")
		assert.Contains(t, out, "What is 2+2?")
		assert.Contains(t, out, "B) 4")
		assert.Contains(t, out, "Total: 1 questions")
	})

	t.Run("json output", func(t *testing.T) {
		m := withServices(t)
		m.documents.result = &domain.DocumentGenerateResult{SessionID: "sess-1", DocumentID: "doc-1"}
		path := writeTempFile(t, "notes.pdf", []byte("%PDF-1.4"))

		out, err := execute(t, "generate", "document", path, "--json")

		require.NoError(t, err)
		assert.Contains(t, out, `"session_id": "sess-1"`)
	})

	t.Run("error carries kind", func(t *testing.T) {
		m := withServices(t)
		m.documents.err = &domain.ExtractionError{Err: os.ErrInvalid}
		path := writeTempFile(t, "bad.pdf", []byte("not a pdf"))

		_, err := execute(t, "generate", "document", path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "[extraction_failed]")
	})

	t.Run("missing file", func(t *testing.T) {
		withServices(t)
		_, err := execute(t, "generate", "document", filepath.Join(t.TempDir(), "nope.pdf"))
		require.Error(t, err)
	})

	t.Run("explicit owner", func(t *testing.T) {
		m := withServices(t)
		m.documents.result = &domain.DocumentGenerateResult{}
		path := writeTempFile(t, "notes.pdf", []byte("%PDF-1.4"))
		other := "0b9a4c6e-1d2f-4e8a-b7c3-5f6d7e8a9b0c"

		_, err := execute(t, "--owner", other, "generate", "document", path)

		require.NoError(t, err)
		assert.Equal(t, other, m.documents.owner)
	})

	t.Run("invalid owner", func(t *testing.T) {
		withServices(t)
		path := writeTempFile(t, "notes.pdf", []byte("%PDF-1.4"))
		_, err := execute(t, "--owner", "alice", "generate", "document", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a UUID")
	})
}

func TestGenerateSimilar(t *testing.T) {
	t.Run("sniffs image type", func(t *testing.T) {
		m := withServices(t)
		m.similar.result = &domain.SimilarGenerateResult{SessionID: "sess-2"}
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		path := writeTempFile(t, "q.png", png)

		out, err := execute(t, "generate", "similar", path,
			"--instruction", "use other numbers", "--difficulty", "hard", "-n", "4")

		require.NoError(t, err)
		assert.Equal(t, "image/png", m.similar.request.ImageMime)
		assert.Equal(t, "use other numbers", m.similar.request.Instruction)
		assert.Equal(t, domain.DifficultyHard, m.similar.request.Difficulty)
		assert.Equal(t, 4, m.similar.request.Quantity)
		assert.Contains(t, out, "No questions.")
	})

	t.Run("instruction is required", func(t *testing.T) {
		withServices(t)
		path := writeTempFile(t, "q.png", []byte("x"))
		_, err := execute(t, "generate", "similar", path)
		require.Error(t, err)
	})
}

func TestRefine(t *testing.T) {
	t.Run("joins instruction words", func(t *testing.T) {
		m := withServices(t)
		m.refinement.result = &domain.RefineResult{QuestionID: "q-1", Version: 2, Question: mcqContent("Harder")}

		out, err := execute(t, "refine", "q-1", "make", "it", "harder")

		require.NoError(t, err)
		assert.Equal(t, "q-1", m.refinement.questionID)
		assert.Equal(t, "make it harder", m.refinement.instruction)
		assert.Contains(t, out, "now at version 2")
	})

	t.Run("conflict kind surfaces", func(t *testing.T) {
		m := withServices(t)
		m.refinement.err = &domain.VersionConflictError{QuestionID: "q-1", Version: 3}

		_, err := execute(t, "refine", "q-1", "again")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "[version_conflict]")
	})

	t.Run("requires instruction", func(t *testing.T) {
		withServices(t)
		_, err := execute(t, "refine", "q-1")
		require.Error(t, err)
	})
}
