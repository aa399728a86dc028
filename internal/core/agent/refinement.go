package agent

import (
	"context"
	"fmt"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/schema"
)

func refinementFeedback(err error) string {
	return "Your output is invalid. Fix it.\n" +
		"Error: " + err.Error() + "\n" +
		"Return ONLY JSON exactly matching the required schema."
}

// RefinementAgent edits one existing question following an instruction.
type RefinementAgent struct {
	protocol Protocol
	prompts  *Prompts
}

// NewRefinementAgent creates a refinement agent.
func NewRefinementAgent(protocol Protocol, prompts *Prompts) *RefinementAgent {
	return &RefinementAgent{protocol: protocol, prompts: prompts}
}

// Refine returns current edited according to instruction.
func (a *RefinementAgent) Refine(
	ctx context.Context,
	instruction string,
	current domain.QuestionContent,
) (domain.QuestionContent, error) {
	currentJSON, err := schema.Marshal(current)
	if err != nil {
		return domain.QuestionContent{}, err
	}

	system, err := a.prompts.Render(driven.PromptRefineSystem, nil)
	if err != nil {
		return domain.QuestionContent{}, err
	}
	user, err := a.prompts.Render(driven.PromptRefineUser, struct {
		Instruction string
		Question    string
	}{instruction, currentJSON})
	if err != nil {
		return domain.QuestionContent{}, err
	}

	rules := schema.RefinementRules()
	edited, err := Run(ctx, a.protocol, Task[domain.QuestionContent]{
		Name: "refinement",
		Messages: []driven.ChatMessage{
			{Role: driven.RoleSystem, Content: system},
			{Role: driven.RoleUser, Content: user},
		},
		Decode: func(raw string) (domain.QuestionContent, error) {
			return schema.ParseQuestion(raw, rules)
		},
		Feedback: refinementFeedback,
	})
	if err != nil {
		return domain.QuestionContent{}, fmt.Errorf("refine question: %w", err)
	}
	return edited, nil
}
