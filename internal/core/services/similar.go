package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/busraauz/ai-quest-platform/internal/core/agent"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// Ensure SimilarService implements the interface.
var _ driving.SimilarGenerationService = (*SimilarService)(nil)

// SimilarService generates questions modelled on an image of an existing one.
type SimilarService struct {
	sessions  driven.SessionStore
	questions driven.QuestionStore
	blobs     driven.BlobStore
	agent     *agent.SimilarAgent
	bucket    string
}

// NewSimilarService creates a new similarity generation service.
func NewSimilarService(
	sessions driven.SessionStore,
	questions driven.QuestionStore,
	blobs driven.BlobStore,
	similarAgent *agent.SimilarAgent,
	bucket string,
) *SimilarService {
	if bucket == "" {
		bucket = domain.DefaultSimilarBucket
	}
	return &SimilarService{
		sessions:  sessions,
		questions: questions,
		blobs:     blobs,
		agent:     similarAgent,
		bucket:    bucket,
	}
}

// Generate stores the seed image and asks the similar agent for new questions.
func (s *SimilarService) Generate(
	ctx context.Context,
	ownerID string,
	req domain.SimilarGenerateRequest,
) (*domain.SimilarGenerateResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	if err := req.Normalise(); err != nil {
		return nil, err
	}

	logger.Section("Similar Generation")
	start := time.Now()
	logger.Debug("Image: %s (%d bytes), quantity=%d, difficulty=%s",
		req.ImageMime, len(req.Image), req.Quantity, req.Difficulty)

	session := &domain.Session{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Title:      req.Instruction,
		SourceType: domain.SourceSimilarity,
		Quantity:   req.Quantity,
		Difficulty: req.Difficulty,
		CreatedAt:  time.Now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	seed := &domain.QuestionSeed{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		SessionID: session.ID,
		InputMode: domain.InputImage,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.CreateSeed(ctx, seed); err != nil {
		return nil, fmt.Errorf("create seed: %w", err)
	}

	blobPath := fmt.Sprintf("%s/%s/%s.%s", ownerID, session.ID, seed.ID, imageExtension(req.ImageMime))
	ref, err := s.blobs.Put(ctx, s.bucket, blobPath, req.Image, req.ImageMime)
	if err != nil {
		return nil, fmt.Errorf("store seed image: %w", err)
	}
	update := domain.SeedImageUpdate{
		Path: path.Join(s.bucket, blobPath),
		Mime: req.ImageMime,
		Size: int64(len(req.Image)),
	}
	if err := s.sessions.UpdateSeedImage(ctx, ownerID, seed.ID, update); err != nil {
		return nil, fmt.Errorf("update seed: %w", err)
	}
	logger.Debug("Stored seed image at %s", ref)

	generated, err := s.agent.Generate(ctx, req.Instruction, req.Quantity, req.Difficulty,
		DataURL(req.ImageMime, req.Image))
	if err != nil {
		logger.Error("Similar generation failed: %v", err)
		return nil, err
	}

	questions := newQuestions(generated, session.ID, ownerID, "", domain.SourceSimilarity)
	if err := s.questions.InsertQuestions(ctx, questions); err != nil {
		return nil, fmt.Errorf("insert questions: %w", err)
	}

	logger.Info("Generated %d similar questions in %s", len(questions), logger.Since(start))
	return &domain.SimilarGenerateResult{
		SessionID: session.ID,
		Questions: questions,
	}, nil
}

// DataURL encodes data as an inline base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// imageExtension maps an image content type to a file extension.
func imageExtension(mime string) string {
	sub := strings.TrimPrefix(strings.ToLower(mime), "image/")
	if i := strings.IndexAny(sub, "+;"); i >= 0 {
		sub = sub[:i]
	}
	switch sub {
	case "jpeg", "pjpeg":
		return "jpg"
	case "":
		return "png"
	default:
		return sub
	}
}
