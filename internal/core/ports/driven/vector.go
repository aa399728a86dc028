package driven

import (
	"context"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// ChunkRetriever performs similarity search over embedded chunks.
// Searches are always scoped to one owner and one document.
type ChunkRetriever interface {
	// MatchChunks returns at most k chunks of the scoped document, ordered by
	// descending similarity to query. A document without embedded chunks
	// yields an empty result, not an error.
	MatchChunks(ctx context.Context, scope domain.ChunkScope, query []float32, k int) ([]domain.RetrievedChunk, error)
}

// ChunkIndexer is an optional interface for retrievers that keep their own copy
// of chunk vectors (for example an external vector database). Retrievers that
// search the DocumentStore directly do not implement it.
type ChunkIndexer interface {
	// IndexChunks upserts embedded chunks into the index.
	IndexChunks(ctx context.Context, chunks []domain.Chunk) error
}
