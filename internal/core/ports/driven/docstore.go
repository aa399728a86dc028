package driven

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Every read and update is scoped by owner.
type DocumentStore interface {
	// CreateDocument inserts a new document row.
	CreateDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document owned by ownerID.
	// Returns domain.ErrNotFound if no such document exists for the owner.
	GetDocument(ctx context.Context, ownerID, id string) (*domain.Document, error)

	// UpdateExtractedText stores the full extracted text of a document.
	UpdateExtractedText(ctx context.Context, ownerID, id, text string) error

	// UpdateStatus sets the processing status and error message of a document.
	UpdateStatus(ctx context.Context, ownerID, id string, status domain.DocumentStatus, errMsg string) error

	// InsertChunks stores chunks in one batch. Embeddings may be nil.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// UpdateEmbeddings stores the embedding of each chunk, keyed by chunk ID.
	// Returns the number of chunks updated.
	UpdateEmbeddings(ctx context.Context, ownerID string, embeddings map[string][]float32) (int, error)

	// GetChunks returns a document's chunks ordered by index.
	GetChunks(ctx context.Context, ownerID, documentID string) ([]domain.Chunk, error)
}
