package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/busraauz/ai-quest-platform/internal/core/agent"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
	"github.com/busraauz/ai-quest-platform/internal/logger"
	"github.com/busraauz/ai-quest-platform/internal/postprocessors/chunker"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentGenerationService = (*DocumentService)(nil)

// RetrievalQuery is embedded to pick the chunks the document agent sees.
const RetrievalQuery = "key concepts, important definitions, main ideas, formulas, examples"

// DocumentConfig holds the tunables of document generation.
type DocumentConfig struct {
	// Bucket receives the uploaded PDFs.
	Bucket string

	// MatchCount is the number of chunks retrieved as study text.
	MatchCount int
}

// DocumentService runs the document pipeline: store, extract, chunk, embed,
// retrieve and generate.
type DocumentService struct {
	sessions  driven.SessionStore
	documents driven.DocumentStore
	questions driven.QuestionStore
	blobs     driven.BlobStore
	extractor driven.TextExtractor
	chunker   *chunker.Chunker
	embedder  *EmbeddingGateway
	retriever *Retriever
	agent     *agent.DocumentAgent
	config    DocumentConfig
}

// NewDocumentService creates a new document generation service.
func NewDocumentService(
	sessions driven.SessionStore,
	documents driven.DocumentStore,
	questions driven.QuestionStore,
	blobs driven.BlobStore,
	extractor driven.TextExtractor,
	splitter *chunker.Chunker,
	embedder *EmbeddingGateway,
	retriever *Retriever,
	documentAgent *agent.DocumentAgent,
	config DocumentConfig,
) *DocumentService {
	if config.Bucket == "" {
		config.Bucket = domain.DefaultDocumentBucket
	}
	if config.MatchCount <= 0 {
		config.MatchCount = domain.DefaultMatchCount
	}
	return &DocumentService{
		sessions:  sessions,
		documents: documents,
		questions: questions,
		blobs:     blobs,
		extractor: extractor,
		chunker:   splitter,
		embedder:  embedder,
		retriever: retriever,
		agent:     documentAgent,
		config:    config,
	}
}

// Generate ingests the uploaded PDF and generates questions from its most
// relevant chunks.
//
// Any failure between extraction and retrieval marks the document failed.
// Questions are stored only after the agent returns a complete valid set.
func (s *DocumentService) Generate(
	ctx context.Context,
	ownerID string,
	req domain.DocumentGenerateRequest,
) (*domain.DocumentGenerateResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	if err := req.Normalise(); err != nil {
		return nil, err
	}

	logger.Section("Document Generation")
	start := time.Now()
	logger.Debug("File: %s (%d bytes), quantity=%d, type=%s",
		req.Filename, len(req.Data), req.Quantity, req.QuestionType)

	// 1. Session
	session := &domain.Session{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        req.Filename,
		SourceType:   domain.SourceDocument,
		QuestionType: req.QuestionType,
		Quantity:     req.Quantity,
		CreatedAt:    time.Now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	// 2. Placeholder document
	docID := uuid.NewString()
	blobPath := fmt.Sprintf("%s/%s/%s.pdf", ownerID, session.ID, docID)
	doc := &domain.Document{
		ID:          docID,
		OwnerID:     ownerID,
		SessionID:   session.ID,
		Filename:    req.Filename,
		StoragePath: path.Join(s.config.Bucket, blobPath),
		MimeType:    domain.DefaultDocumentMime,
		Status:      domain.DocumentUploaded,
		CreatedAt:   time.Now(),
	}
	if err := s.documents.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	// 3. Original bytes
	ref, err := s.blobs.Put(ctx, s.config.Bucket, blobPath, req.Data, domain.DefaultDocumentMime)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	logger.Debug("Stored document at %s", ref)

	// 4. Extract, chunk, embed and retrieve
	retrieved, err := s.ingest(ctx, doc, req.Data)
	if err != nil {
		s.markFailed(ctx, doc, err)
		return nil, err
	}
	if err := s.documents.UpdateStatus(ctx, ownerID, docID, domain.DocumentReady, ""); err != nil {
		return nil, fmt.Errorf("update document status: %w", err)
	}

	// 5. Generate
	contexts := make([]string, len(retrieved))
	for i, c := range retrieved {
		contexts[i] = c.Content
	}
	generated, err := s.agent.Generate(ctx, contexts, req.Quantity, req.QuestionType)
	if err != nil {
		logger.Error("Document generation failed: %v", err)
		return nil, err
	}

	// 6. Persist the whole set
	questions := newQuestions(generated, session.ID, ownerID, docID, domain.SourceDocument)
	if err := s.questions.InsertQuestions(ctx, questions); err != nil {
		return nil, fmt.Errorf("insert questions: %w", err)
	}

	logger.Info("Generated %d questions from %s in %s", len(questions), req.Filename, logger.Since(start))
	return &domain.DocumentGenerateResult{
		SessionID:  session.ID,
		DocumentID: docID,
		Questions:  questions,
	}, nil
}

// ingest turns a stored document into retrieved study text.
func (s *DocumentService) ingest(
	ctx context.Context,
	doc *domain.Document,
	data []byte,
) ([]domain.RetrievedChunk, error) {
	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if err := s.documents.UpdateExtractedText(ctx, doc.OwnerID, doc.ID, text); err != nil {
		return nil, fmt.Errorf("save extracted text: %w", err)
	}

	doc.ExtractedText = text
	chunks := s.chunker.Process(doc)
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}
	logger.Debug("Extracted %d characters into %d chunks", len(text), len(chunks))

	if err := s.documents.InsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	contents := make([]string, len(chunks))
	for i := range chunks {
		contents[i] = chunks[i].Content
	}
	vectors, err := s.embedder.Embed(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	byID := make(map[string][]float32, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		byID[chunks[i].ID] = vectors[i]
	}
	if _, err := s.documents.UpdateEmbeddings(ctx, doc.OwnerID, byID); err != nil {
		return nil, fmt.Errorf("save embeddings: %w", err)
	}
	if err := s.retriever.Index(ctx, chunks); err != nil {
		return nil, err
	}

	query, err := s.embedder.EmbedOne(ctx, RetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed retrieval query: %w", err)
	}
	scope := domain.ChunkScope{OwnerID: doc.OwnerID, DocumentID: doc.ID}
	return s.retriever.Retrieve(ctx, scope, query, s.config.MatchCount)
}

// markFailed records err on the document. The update outlives a cancelled
// request context.
func (s *DocumentService) markFailed(ctx context.Context, doc *domain.Document, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.documents.UpdateStatus(ctx, doc.OwnerID, doc.ID, domain.DocumentFailed, cause.Error()); err != nil {
		logger.Warn("Failed to mark document %s failed: %v", doc.ID, err)
	}
	logger.Error("Document %s failed: %v", doc.ID, cause)
}

// newQuestions builds persisted questions sharing one creation time.
func newQuestions(
	contents []domain.QuestionContent,
	sessionID, ownerID, documentID string,
	source domain.SourceType,
) []domain.Question {
	now := time.Now()
	out := make([]domain.Question, len(contents))
	for i, c := range contents {
		out[i] = domain.Question{
			QuestionContent: c,
			ID:              uuid.NewString(),
			OwnerID:         ownerID,
			SessionID:       sessionID,
			DocumentID:      documentID,
			SourceType:      source,
			CreatedAt:       now,
		}
	}
	return out
}
