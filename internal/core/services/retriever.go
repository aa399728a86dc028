package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// Retriever returns the chunks of one document most similar to a query vector.
type Retriever struct {
	backend driven.ChunkRetriever
}

// NewRetriever creates a retriever over backend.
func NewRetriever(backend driven.ChunkRetriever) *Retriever {
	return &Retriever{backend: backend}
}

// Retrieve returns at most k chunks of scope ordered by descending similarity.
// A non-positive k returns nothing without querying the backend.
func (r *Retriever) Retrieve(
	ctx context.Context,
	scope domain.ChunkScope,
	query []float32,
	k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	hits, err := r.backend.MatchChunks(ctx, scope, query, k)
	if err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}

	// Not every backend sorts by similarity.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	if hits == nil {
		hits = []domain.RetrievedChunk{}
	}

	logger.Debug("Retrieved %d/%d chunks for document %s", len(hits), k, scope.DocumentID)
	return hits, nil
}

// Index forwards embedded chunks to the backend when it keeps its own index.
func (r *Retriever) Index(ctx context.Context, chunks []domain.Chunk) error {
	indexer, ok := r.backend.(driven.ChunkIndexer)
	if !ok || len(chunks) == 0 {
		return nil
	}
	if err := indexer.IndexChunks(ctx, chunks); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	return nil
}
