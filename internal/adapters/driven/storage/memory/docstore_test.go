package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

func seedDocument(t *testing.T, store *DocumentStore, ownerID, docID string) {
	t.Helper()
	require.NoError(t, store.CreateDocument(context.Background(), &domain.Document{
		ID:      docID,
		OwnerID: ownerID,
		Status:  domain.DocumentUploaded,
	}))
}

func TestDocumentStore_OwnerScopedReads(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	seedDocument(t, store, "owner-1", "doc-1")

	doc, err := store.GetDocument(ctx, "owner-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentUploaded, doc.Status)

	_, err = store.GetDocument(ctx, "owner-2", "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetDocument(ctx, "owner-1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Updates(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	seedDocument(t, store, "owner-1", "doc-1")

	require.NoError(t, store.UpdateExtractedText(ctx, "owner-1", "doc-1", "full text"))
	require.NoError(t, store.UpdateStatus(ctx, "owner-1", "doc-1", domain.DocumentFailed, "no chunks"))

	doc, err := store.GetDocument(ctx, "owner-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "full text", doc.ExtractedText)
	assert.Equal(t, domain.DocumentFailed, doc.Status)
	assert.Equal(t, "no chunks", doc.ErrorMessage)

	err = store.UpdateStatus(ctx, "owner-2", "doc-1", domain.DocumentReady, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ChunksAndEmbeddings(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	require.NoError(t, store.InsertChunks(ctx, []domain.Chunk{
		{ID: "c2", OwnerID: "owner-1", DocumentID: "doc-1", Index: 2, Content: "two"},
		{ID: "c0", OwnerID: "owner-1", DocumentID: "doc-1", Index: 0, Content: "zero"},
		{ID: "c1", OwnerID: "owner-1", DocumentID: "doc-1", Index: 1, Content: "one"},
	}))

	chunks, err := store.GetChunks(ctx, "owner-1", "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"zero", "one", "two"}, []string{chunks[0].Content, chunks[1].Content, chunks[2].Content})

	n, err := store.UpdateEmbeddings(ctx, "owner-1", map[string][]float32{
		"c0": {1, 0},
		"c1": {0, 1},
		"zz": {1, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.UpdateEmbeddings(ctx, "owner-2", map[string][]float32{"c2": {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	others, err := store.GetChunks(ctx, "owner-2", "doc-1")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestDocumentStore_MatchChunks(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	require.NoError(t, store.InsertChunks(ctx, []domain.Chunk{
		{ID: "a", OwnerID: "owner-1", DocumentID: "doc-1", Index: 0, Content: "x axis", Embedding: []float32{1, 0}},
		{ID: "b", OwnerID: "owner-1", DocumentID: "doc-1", Index: 1, Content: "diagonal", Embedding: []float32{1, 1}},
		{ID: "c", OwnerID: "owner-1", DocumentID: "doc-1", Index: 2, Content: "y axis", Embedding: []float32{0, 1}},
		{ID: "d", OwnerID: "owner-1", DocumentID: "doc-1", Index: 3, Content: "not embedded"},
		{ID: "e", OwnerID: "owner-1", DocumentID: "doc-2", Index: 0, Content: "other doc", Embedding: []float32{1, 0}},
		{ID: "f", OwnerID: "owner-2", DocumentID: "doc-1", Index: 0, Content: "other owner", Embedding: []float32{1, 0}},
	}))

	scope := domain.ChunkScope{OwnerID: "owner-1", DocumentID: "doc-1"}

	hits, err := store.MatchChunks(ctx, scope, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, "b", hits[1].ChunkID)

	all, err := store.MatchChunks(ctx, scope, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "only the scoped, embedded chunks are candidates")

	none, err := store.MatchChunks(ctx, scope, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := store.MatchChunks(ctx, domain.ChunkScope{OwnerID: "owner-1", DocumentID: "missing"}, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
