package domain

import (
	"math"
	"time"
)

// DocumentStatus is the processing state of an uploaded document.
type DocumentStatus string

// Document lifecycle states.
const (
	// DocumentUploaded is the placeholder state before text has been processed.
	DocumentUploaded DocumentStatus = "uploaded"

	// DocumentReady means chunks are embedded and retrievable.
	DocumentReady DocumentStatus = "ready"

	// DocumentFailed means a processing step failed; ErrorMessage says which.
	DocumentFailed DocumentStatus = "failed"
)

// DefaultDocumentMime is the content type recorded for uploaded documents.
const DefaultDocumentMime = "application/pdf"

// Document is an uploaded source file and its extracted text.
// One Document owns many Chunks.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// OwnerID is the user that uploaded the document.
	OwnerID string `json:"owner_id"`

	// SessionID links to the generation Session this upload belongs to.
	SessionID string `json:"session_id"`

	// Filename is the name supplied by the uploader.
	Filename string `json:"filename"`

	// StoragePath is the blob path the original bytes were written to.
	StoragePath string `json:"storage_path"`

	// MimeType is the content type of the stored blob.
	MimeType string `json:"mime_type"`

	// ExtractedText is the full plain text before chunking.
	ExtractedText string `json:"extracted_text,omitempty"`

	// Status is the processing state.
	Status DocumentStatus `json:"status"`

	// ErrorMessage describes why processing failed. Empty unless Status is failed.
	ErrorMessage string `json:"error_message,omitempty"`

	// CreatedAt is when the document row was created.
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a contiguous slice of document text sized for embedding and retrieval.
// Chunks are ordered by Index within their document and are immutable once embedded.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"id"`

	// OwnerID scopes the chunk to the document owner.
	OwnerID string `json:"owner_id"`

	// SessionID links to the generation Session.
	SessionID string `json:"session_id"`

	// DocumentID links to the parent Document.
	DocumentID string `json:"document_id"`

	// Index is the ordinal position within the document, starting at 0.
	Index int `json:"chunk_index"`

	// Content is the text of this chunk.
	Content string `json:"content"`

	// Embedding is the vector representation. Nil until embedded.
	Embedding []float32 `json:"-"`
}

// ChunkScope restricts retrieval to a single document of a single owner.
type ChunkScope struct {
	OwnerID    string
	DocumentID string
}

// RetrievedChunk is a retrieval hit with its similarity score.
type RetrievedChunk struct {
	// ChunkID is the matched chunk.
	ChunkID string `json:"id"`

	// Index is the chunk position within its document.
	Index int `json:"chunk_index"`

	// Content is the chunk text fed to the model.
	Content string `json:"content"`

	// Similarity is the cosine similarity to the query vector.
	Similarity float64 `json:"similarity"`
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length or zero magnitude have similarity 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
