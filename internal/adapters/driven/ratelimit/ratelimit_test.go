package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

type stubChatModel struct {
	calls int
	err   error
}

func (m *stubChatModel) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	m.calls++
	return "ok", m.err
}
func (m *stubChatModel) ModelName() string          { return "stub" }
func (m *stubChatModel) Ping(context.Context) error { return nil }
func (m *stubChatModel) Close() error               { return nil }

type stubEmbedder struct{ batches int }

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{1}, nil }
func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.batches++
	return make([][]float32, len(texts)), nil
}
func (s *stubEmbedder) Dimensions() int             { return 1 }
func (s *stubEmbedder) ModelName() string           { return "stub" }
func (s *stubEmbedder) Ping(context.Context) error  { return nil }
func (s *stubEmbedder) Close() error                { return nil }

func TestChatModel_DelegatesAndKeepsIdentity(t *testing.T) {
	inner := &stubChatModel{}
	model := WrapChatModel(inner, NewLimiter(domain.RateLimitSettings{}))

	reply, err := model.Chat(context.Background(), nil, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "stub", model.ModelName())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 1})
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx), "the bucket is empty for far longer than the deadline")
}

func TestLimiter_BacksOffAfterRateLimit(t *testing.T) {
	limiter := NewLimiter(domain.RateLimitSettings{})
	limiter.backoff = time.Hour
	inner := &stubChatModel{err: fmt.Errorf("openai: %w", domain.ErrRateLimited)}
	model := WrapChatModel(inner, limiter)

	_, err := model.Chat(context.Background(), nil, driven.ChatOptions{})
	require.ErrorIs(t, err, domain.ErrRateLimited)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = model.Chat(ctx, nil, driven.ChatOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls)
}

func TestLimiter_IgnoresOtherErrors(t *testing.T) {
	limiter := NewLimiter(domain.RateLimitSettings{})
	limiter.Observe(fmt.Errorf("boom"))
	assert.True(t, limiter.retryAt.IsZero())
}

func TestEmbeddingService_BatchIsOneCall(t *testing.T) {
	inner := &stubEmbedder{}
	svc := WrapEmbeddingService(inner, NewLimiter(domain.RateLimitSettings{RequestsPerSecond: 100, Burst: 5}))

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Equal(t, 1, inner.batches)
	assert.Equal(t, 1, svc.Dimensions())
}
