package driven

import "context"

// BlobStore persists uploaded files.
// Callers build paths deterministically from owner, session and entity IDs.
type BlobStore interface {
	// Put writes data to bucket/path and returns the stored reference.
	Put(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
}
