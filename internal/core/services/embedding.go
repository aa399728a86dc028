package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// EmbeddingGateway batches texts through an EmbeddingService and checks every
// returned vector against the configured dimension before it is used.
type EmbeddingGateway struct {
	service    driven.EmbeddingService
	dimensions int
	batchSize  int
}

// NewEmbeddingGateway creates a gateway. Non-positive dimensions or batch
// size fall back to the defaults.
func NewEmbeddingGateway(service driven.EmbeddingService, settings domain.EmbeddingSettings) *EmbeddingGateway {
	g := &EmbeddingGateway{
		service:    service,
		dimensions: settings.Dimensions,
		batchSize:  settings.BatchSize,
	}
	if g.dimensions <= 0 {
		g.dimensions = domain.DefaultEmbeddingDim
	}
	if g.batchSize <= 0 {
		g.batchSize = domain.DefaultEmbeddingBatch
	}
	return g
}

// Embed returns one vector per input text, in input order.
// Texts are trimmed before embedding. An empty input makes no provider call.
func (g *EmbeddingGateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if g.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	clean := make([]string, len(texts))
	for i, t := range texts {
		clean[i] = strings.TrimSpace(t)
	}

	out := make([][]float32, 0, len(clean))
	for start := 0; start < len(clean); start += g.batchSize {
		end := min(start+g.batchSize, len(clean))
		batch := clean[start:end]

		vectors, err := g.service.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embed batch %d-%d: provider returned %d vectors for %d texts",
				start, end, len(vectors), len(batch))
		}
		for i, v := range vectors {
			if len(v) != g.dimensions {
				return nil, &domain.DimensionMismatchError{
					Expected: g.dimensions,
					Got:      len(v),
					Index:    start + i,
				}
			}
		}
		out = append(out, vectors...)
		logger.Debug("Embedded batch %d-%d of %d", start, end, len(clean))
	}
	return out, nil
}

// EmbedOne embeds a single text.
func (g *EmbeddingGateway) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions returns the vector width every embedding is checked against.
func (g *EmbeddingGateway) Dimensions() int {
	return g.dimensions
}
