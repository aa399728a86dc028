// Package supabase uploads blobs to Supabase Storage over its REST API.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// DefaultTimeout bounds a single upload.
const DefaultTimeout = 60 * time.Second

// Config holds Supabase Storage connection settings.
type Config struct {
	// URL is the project URL, e.g. https://xyz.supabase.co.
	URL string

	// Key is a service role or storage key with write access to the buckets.
	Key string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Store uploads objects with POST /storage/v1/object/{bucket}/{path}.
type Store struct {
	client  *http.Client
	baseURL string
	key     string
}

// New creates a Supabase Storage blob store.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase: URL and storage key are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		key:     cfg.Key,
	}, nil
}

// Put uploads data and returns "bucket/path". Uploads to an existing path
// fail, since every path embeds a fresh ID.
func (s *Store) Put(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if bucket == "" || path == "" {
		return "", fmt.Errorf("supabase: bucket and path are required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	endpoint := s.baseURL + "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("supabase storage error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return bucket + "/" + path, nil
}

// escapePath escapes each segment of a slash-separated object path.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
