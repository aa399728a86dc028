// Package qdrant provides a chunk retriever backed by a Qdrant collection,
// talking to Qdrant's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// Ensure Retriever implements the interfaces.
var (
	_ driven.ChunkRetriever = (*Retriever)(nil)
	_ driven.ChunkIndexer   = (*Retriever)(nil)
)

// Default configuration values.
const (
	DefaultCollection = "doc_chunks"
	DefaultTimeout    = 15 * time.Second
)

// Config holds Qdrant connection settings.
type Config struct {
	// URL is the Qdrant REST endpoint, e.g. http://localhost:6333.
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection holds one point per chunk (default: doc_chunks).
	Collection string

	// Dimensions is the vector size used when the collection is created.
	Dimensions int

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Retriever indexes chunk vectors as Qdrant points and searches them with a
// payload filter on owner and document. Points use cosine distance.
type Retriever struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
	dimensions int

	mu      sync.Mutex
	ensured bool
}

// New creates a Qdrant retriever. The collection is created on first use.
func New(cfg Config) (*Retriever, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant: URL is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: invalid vector dimension %d", cfg.Dimensions)
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Retriever{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}, nil
}

type point struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

type pointPayload struct {
	OwnerID    string `json:"owner_id"`
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
}

type matchCondition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	Filter      struct {
		Must []matchCondition `json:"must"`
	} `json:"filter"`
}

type searchResponse struct {
	Result []struct {
		ID      any          `json:"id"`
		Score   float64      `json:"score"`
		Payload pointPayload `json:"payload"`
	} `json:"result"`
}

// IndexChunks upserts embedded chunks as points keyed by chunk ID.
// Chunks without an embedding are skipped.
func (r *Retriever) IndexChunks(ctx context.Context, chunks []domain.Chunk) error {
	points := make([]point, 0, len(chunks))
	for _, c := range chunks {
		if c.Embedding == nil {
			continue
		}
		points = append(points, point{
			ID:     c.ID,
			Vector: c.Embedding,
			Payload: pointPayload{
				OwnerID:    c.OwnerID,
				SessionID:  c.SessionID,
				DocumentID: c.DocumentID,
				ChunkIndex: c.Index,
				Content:    c.Content,
			},
		})
	}
	if len(points) == 0 {
		return nil
	}
	if err := r.ensureCollection(ctx); err != nil {
		return err
	}

	endpoint := r.collectionURL() + "/points?wait=true"
	if err := r.do(ctx, http.MethodPut, endpoint, map[string]any{"points": points}, nil); err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
	}
	logger.Debug("qdrant: upserted %d points into %s", len(points), r.collection)
	return nil
}

// MatchChunks searches the scoped document's points, best first.
func (r *Retriever) MatchChunks(
	ctx context.Context,
	scope domain.ChunkScope,
	query []float32,
	k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := r.ensureCollection(ctx); err != nil {
		return nil, err
	}

	req := searchRequest{Vector: query, Limit: k, WithPayload: true}
	req.Filter.Must = []matchCondition{
		match("owner_id", scope.OwnerID),
		match("document_id", scope.DocumentID),
	}

	var resp searchResponse
	if err := r.do(ctx, http.MethodPost, r.collectionURL()+"/points/search", req, &resp); err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	hits := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, res := range resp.Result {
		hits = append(hits, domain.RetrievedChunk{
			ChunkID:    fmt.Sprint(res.ID),
			Index:      res.Payload.ChunkIndex,
			Content:    res.Payload.Content,
			Similarity: res.Score,
		})
	}
	return hits, nil
}

// ensureCollection creates the collection unless it already exists.
func (r *Retriever) ensureCollection(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensured {
		return nil
	}

	err := r.do(ctx, http.MethodGet, r.collectionURL(), nil, nil)
	if err == nil {
		r.ensured = true
		return nil
	}
	var status *statusError
	if !errors.As(err, &status) || status.Code != http.StatusNotFound {
		return fmt.Errorf("qdrant: get collection: %w", err)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     r.dimensions,
			"distance": "Cosine",
		},
	}
	if err := r.do(ctx, http.MethodPut, r.collectionURL(), body, nil); err != nil {
		return fmt.Errorf("qdrant: create collection: %w", err)
	}
	logger.Info("qdrant: created collection %s (%d dims)", r.collection, r.dimensions)
	r.ensured = true
	return nil
}

func (r *Retriever) collectionURL() string {
	return r.baseURL + "/collections/" + url.PathEscape(r.collection)
}

func match(key, value string) matchCondition {
	var c matchCondition
	c.Key = key
	c.Match.Value = value
	return c
}

// statusError is a non-2xx response from Qdrant.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (r *Retriever) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.apiKey != "" {
		req.Header.Set("api-key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
