// Package filesystem stores uploaded files under a local directory,
// one subdirectory per bucket.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store writes blobs to <root>/<bucket>/<path>.
type Store struct {
	root string
}

// New creates a filesystem blob store rooted at root.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("filesystem blob store: root directory is required")
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

// Put writes data and returns "bucket/path". Existing files are replaced.
func (s *Store) Put(ctx context.Context, bucket, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := bucket + "/" + name
	if !validRef(bucket, name) {
		return "", fmt.Errorf("invalid blob path %q", ref)
	}

	full := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}

	// Write to a temp file first so a crash never leaves a partial blob.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("move blob into place: %w", err)
	}

	return ref, nil
}

// validRef reports whether bucket/name is a clean relative path that stays
// inside the bucket directory.
func validRef(bucket, name string) bool {
	if bucket == "" || name == "" || strings.Contains(bucket, "/") {
		return false
	}
	ref := bucket + "/" + name
	if path.Clean(ref) != ref || path.IsAbs(ref) {
		return false
	}
	for _, part := range strings.Split(ref, "/") {
		if part == ".." || part == "." {
			return false
		}
	}
	return true
}

// Root returns the blob root directory.
func (s *Store) Root() string {
	return s.root
}
