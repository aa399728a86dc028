package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

func TestQuestionGet(t *testing.T) {
	t.Run("prints question", func(t *testing.T) {
		m := withServices(t)
		m.questions.question = &domain.Question{
			ID:              "q-1",
			SessionID:       "sess-1",
			SourceType:      domain.SourceDocument,
			QuestionContent: mcqContent("What is 2+2?"),
		}

		out, err := execute(t, "question", "get", "q-1")

		require.NoError(t, err)
		assert.Equal(t, testOwner, m.questions.owner)
		assert.Contains(t, out, "Source:  document")
		assert.Contains(t, out, "Answer: B")
	})

	t.Run("not found", func(t *testing.T) {
		m := withServices(t)
		m.questions.err = domain.ErrNotFound

		_, err := execute(t, "question", "get", "q-404")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "[not_found]")
	})
}

func TestQuestionVersions(t *testing.T) {
	t.Run("lists versions", func(t *testing.T) {
		m := withServices(t)
		at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
		m.questions.versions = []domain.QuestionVersion{
			{Version: 2, Instruction: "harder", Content: mcqContent("v2"), CreatedAt: at},
			{Version: 1, Instruction: domain.SeedInstruction, Content: mcqContent("v1"), CreatedAt: at},
		}

		out, err := execute(t, "question", "versions", "q-1")

		require.NoError(t, err)
		assert.Contains(t, out, "v2  2024-05-01 09:30  harder")
		assert.Contains(t, out, "v1  2024-05-01 09:30  __seed__")
	})

	t.Run("empty history", func(t *testing.T) {
		m := withServices(t)
		m.questions.versions = []domain.QuestionVersion{}

		out, err := execute(t, "question", "versions", "q-1")

		require.NoError(t, err)
		assert.Contains(t, out, "never been refined")
	})
}

func TestQuestionRecent(t *testing.T) {
	m := withServices(t)
	m.questions.summaries = []domain.SessionSummary{{
		SessionID:    "sess-1",
		SourceType:   domain.SourceSimilarity,
		QuestionType: domain.QuestionMCQ,
		Questions:    []domain.Question{{ID: "q-1", QuestionContent: mcqContent("Clone")}},
	}}

	out, err := execute(t, "question", "recent")

	require.NoError(t, err)
	assert.Contains(t, out, "Session sess-1 (similarity, mcq)")
	assert.Contains(t, out, "q-1  Clone")
}

func TestQuestionSession_JSON(t *testing.T) {
	m := withServices(t)
	m.questions.questions = []domain.Question{{ID: "q-7", QuestionContent: mcqContent("Seven")}}

	out, err := execute(t, "question", "session", "sess-1", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "q-7"`)
}
