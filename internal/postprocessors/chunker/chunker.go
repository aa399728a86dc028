// Package chunker provides a sliding-window text chunker.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Chunker splits text into overlapping fixed-size windows.
// Sizes are measured in characters (runes), not bytes.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// step is how far each window start advances. It is at least 1 so the
// window always moves forward, even when overlap >= chunk size.
func (c *Chunker) step() int {
	if s := c.chunkSize - c.overlap; s > 0 {
		return s
	}
	return 1
}

// Split returns the ordered, non-empty chunks of text.
// Whitespace-only input yields no chunks. The final chunk may be shorter
// than the chunk size. Output depends only on text and the configured sizes.
func (c *Chunker) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.step()
	chunks := make([]string, 0, n/step+1)

	for start := 0; start < n; start += step {
		end := min(start+c.chunkSize, n)

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == n {
			break
		}
	}

	return chunks
}

// Process chunks a document's extracted text into domain chunks carrying the
// document's owner, session and ID. Embeddings are left nil.
func (c *Chunker) Process(doc *domain.Document) []domain.Chunk {
	parts := c.Split(doc.ExtractedText)
	chunks := make([]domain.Chunk, len(parts))
	for i, content := range parts {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			OwnerID:    doc.OwnerID,
			SessionID:  doc.SessionID,
			DocumentID: doc.ID,
			Index:      i,
			Content:    content,
		}
	}
	return chunks
}
