package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/schema"
)

// StudyTextSeparator joins retrieved chunks into the study text.
const StudyTextSeparator = "\n\n---\n\n"

// generationFeedback is the corrective turn used by the generation agents.
func generationFeedback(err error) string {
	return "Your output was invalid JSON or did not match the required schema.\n" +
		"Error: " + err.Error() + "\n" +
		"Return ONLY corrected JSON that matches the shape exactly."
}

// DocumentAgent generates questions from retrieved study text.
type DocumentAgent struct {
	protocol Protocol
	prompts  *Prompts
}

// NewDocumentAgent creates a document agent.
func NewDocumentAgent(protocol Protocol, prompts *Prompts) *DocumentAgent {
	return &DocumentAgent{protocol: protocol, prompts: prompts}
}

// Generate asks for exactly count questions of questionType grounded in chunks.
func (a *DocumentAgent) Generate(
	ctx context.Context,
	chunks []string,
	count int,
	questionType domain.QuestionType,
) ([]domain.QuestionContent, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}

	system, err := a.prompts.Render(driven.PromptDocumentSystem, nil)
	if err != nil {
		return nil, err
	}
	user, err := a.prompts.Render(driven.PromptDocumentUser, struct {
		Count        int
		QuestionType domain.QuestionType
		StudyText    string
	}{count, questionType, strings.Join(chunks, StudyTextSeparator)})
	if err != nil {
		return nil, err
	}

	rules := schema.DocumentRules(count, questionType)
	questions, err := Run(ctx, a.protocol, Task[[]domain.QuestionContent]{
		Name: "document",
		Messages: []driven.ChatMessage{
			{Role: driven.RoleSystem, Content: system},
			{Role: driven.RoleUser, Content: user},
		},
		Decode: func(raw string) ([]domain.QuestionContent, error) {
			return schema.ParseQuestions(raw, rules)
		},
		Feedback: generationFeedback,
	})
	if err != nil {
		return nil, fmt.Errorf("generate document questions: %w", err)
	}
	return questions, nil
}
