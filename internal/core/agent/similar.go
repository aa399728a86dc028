package agent

import (
	"context"
	"fmt"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/schema"
)

// SimilarAgent clones an existing question from an image of it.
type SimilarAgent struct {
	protocol Protocol
	prompts  *Prompts
}

// NewSimilarAgent creates a similarity agent.
func NewSimilarAgent(protocol Protocol, prompts *Prompts) *SimilarAgent {
	return &SimilarAgent{protocol: protocol, prompts: prompts}
}

// Generate asks for exactly count questions like the one pictured in imageURL.
// imageURL is normally a base64 data URL.
func (a *SimilarAgent) Generate(
	ctx context.Context,
	instruction string,
	count int,
	difficulty domain.Difficulty,
	imageURL string,
) ([]domain.QuestionContent, error) {
	system, err := a.prompts.Render(driven.PromptSimilarSystem, struct {
		Difficulty domain.Difficulty
	}{difficulty})
	if err != nil {
		return nil, err
	}
	user, err := a.prompts.Render(driven.PromptSimilarUser, struct {
		Count       int
		Instruction string
	}{count, instruction})
	if err != nil {
		return nil, err
	}

	rules := schema.SimilarRules(count)
	questions, err := Run(ctx, a.protocol, Task[[]domain.QuestionContent]{
		Name: "similar",
		Messages: []driven.ChatMessage{
			{Role: driven.RoleSystem, Content: system},
			{Role: driven.RoleUser, Content: user, ImageURL: imageURL},
		},
		Decode: func(raw string) ([]domain.QuestionContent, error) {
			return schema.ParseQuestions(raw, rules)
		},
		Feedback: generationFeedback,
	})
	if err != nil {
		return nil, fmt.Errorf("generate similar questions: %w", err)
	}
	return questions, nil
}
