package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/busraauz/ai-quest-platform/internal/core/agent"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// Ensure RefinementService implements the interface.
var _ driving.RefinementService = (*RefinementService)(nil)

// RefinementService edits questions by appending versions.
// Neither the question row nor earlier versions are ever modified.
type RefinementService struct {
	questions driven.QuestionStore
	agent     *agent.RefinementAgent
}

// NewRefinementService creates a new refinement service.
func NewRefinementService(questions driven.QuestionStore, refinementAgent *agent.RefinementAgent) *RefinementService {
	return &RefinementService{questions: questions, agent: refinementAgent}
}

// Refine applies instruction to the latest version of a question.
//
// Version 1 is seeded from the question row the first time a question is
// refined. When another refinement appends the same version first, the
// latest version is read again and the edit is redone on it once.
func (s *RefinementService) Refine(
	ctx context.Context,
	ownerID, questionID, instruction string,
) (*domain.RefineResult, error) {
	if err := domain.ValidateRefineInstruction(instruction); err != nil {
		return nil, err
	}
	instruction = strings.TrimSpace(instruction)

	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if question.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	logger.Section("Question Refinement")
	logger.Debug("Question %s: %q", questionID, instruction)

	latest, err := s.latest(ctx, question)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		edited, err := s.agent.Refine(ctx, instruction, latest.Content)
		if err != nil {
			logger.Error("Refinement failed: %v", err)
			return nil, err
		}

		next := &domain.QuestionVersion{
			ID:          uuid.NewString(),
			QuestionID:  question.ID,
			OwnerID:     ownerID,
			Version:     latest.Version + 1,
			Instruction: instruction,
			Content:     edited,
			CreatedAt:   time.Now(),
		}
		err = s.questions.InsertVersion(ctx, next)
		if err == nil {
			logger.Info("Question %s is now at version %d", question.ID, next.Version)
			return &domain.RefineResult{
				QuestionID: question.ID,
				Version:    next.Version,
				Question:   edited,
			}, nil
		}

		var conflict *domain.VersionConflictError
		if !errors.As(err, &conflict) || attempt > 1 {
			return nil, fmt.Errorf("append version: %w", err)
		}
		logger.Warn("Version %d of question %s was taken, retrying", next.Version, question.ID)

		latest, err = s.questions.LatestVersion(ctx, question.ID)
		if err != nil {
			return nil, fmt.Errorf("get latest version: %w", err)
		}
	}
}

// latest returns the newest version of question, seeding version 1 from the
// question row when there is none.
func (s *RefinementService) latest(ctx context.Context, question *domain.Question) (*domain.QuestionVersion, error) {
	latest, err := s.questions.LatestVersion(ctx, question.ID)
	if err == nil {
		return latest, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get latest version: %w", err)
	}

	seed := &domain.QuestionVersion{
		ID:          uuid.NewString(),
		QuestionID:  question.ID,
		OwnerID:     question.OwnerID,
		Version:     1,
		Instruction: domain.SeedInstruction,
		Content:     question.QuestionContent,
		CreatedAt:   time.Now(),
	}
	err = s.questions.InsertVersion(ctx, seed)
	if err == nil {
		return seed, nil
	}

	// Someone else seeded first.
	var conflict *domain.VersionConflictError
	if !errors.As(err, &conflict) {
		return nil, fmt.Errorf("seed version: %w", err)
	}
	latest, err = s.questions.LatestVersion(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("get latest version: %w", err)
	}
	return latest, nil
}
