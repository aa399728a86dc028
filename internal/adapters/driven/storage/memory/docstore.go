package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore  = (*DocumentStore)(nil)
	_ driven.ChunkRetriever = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It also answers similarity searches over the chunks it holds.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk // by document ID, in index order
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// CreateDocument stores a new document.
func (s *DocumentStore) CreateDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document owned by ownerID.
func (s *DocumentStore) GetDocument(_ context.Context, ownerID, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// UpdateExtractedText stores the extracted text of a document.
func (s *DocumentStore) UpdateExtractedText(_ context.Context, ownerID, id, text string) error {
	return s.update(ownerID, id, func(d *domain.Document) { d.ExtractedText = text })
}

// UpdateStatus sets a document's status and error message.
func (s *DocumentStore) UpdateStatus(_ context.Context, ownerID, id string, status domain.DocumentStatus, errMsg string) error {
	return s.update(ownerID, id, func(d *domain.Document) {
		d.Status = status
		d.ErrorMessage = errMsg
	})
}

func (s *DocumentStore) update(ownerID, id string, fn func(*domain.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok || doc.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	fn(&doc)
	s.documents[id] = doc
	return nil
}

// InsertChunks stores chunks, keeping each document's chunks ordered by index.
func (s *DocumentStore) InsertChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[string]bool)
	for _, c := range chunks {
		c.Embedding = slices.Clone(c.Embedding)
		s.chunks[c.DocumentID] = append(s.chunks[c.DocumentID], c)
		touched[c.DocumentID] = true
	}
	for docID := range touched {
		sort.SliceStable(s.chunks[docID], func(i, j int) bool {
			return s.chunks[docID][i].Index < s.chunks[docID][j].Index
		})
	}
	return nil
}

// UpdateEmbeddings stores embeddings keyed by chunk ID.
func (s *DocumentStore) UpdateEmbeddings(_ context.Context, ownerID string, embeddings map[string][]float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, chunks := range s.chunks {
		for i := range chunks {
			vec, ok := embeddings[chunks[i].ID]
			if !ok || chunks[i].OwnerID != ownerID {
				continue
			}
			chunks[i].Embedding = slices.Clone(vec)
			updated++
		}
	}
	return updated, nil
}

// GetChunks returns a document's chunks ordered by index.
func (s *DocumentStore) GetChunks(_ context.Context, ownerID, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Chunk
	for _, c := range s.chunks[documentID] {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// MatchChunks scores the scoped document's embedded chunks against query.
func (s *DocumentStore) MatchChunks(
	_ context.Context,
	scope domain.ChunkScope,
	query []float32,
	k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.RetrievedChunk
	for _, c := range s.chunks[scope.DocumentID] {
		if c.OwnerID != scope.OwnerID || c.Embedding == nil {
			continue
		}
		hits = append(hits, domain.RetrievedChunk{
			ChunkID:    c.ID,
			Index:      c.Index,
			Content:    c.Content,
			Similarity: domain.CosineSimilarity(query, c.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
