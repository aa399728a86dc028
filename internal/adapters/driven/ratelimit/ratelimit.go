// Package ratelimit throttles outbound chat model and embedding calls.
//
// One Limiter is shared by every decorated service so that document and
// similarity generation draw from the same budget. A provider 429 (reported
// as domain.ErrRateLimited) pauses all callers for the backoff period.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// DefaultBackoff is how long callers pause after a provider rate limit error.
const DefaultBackoff = 10 * time.Second

// Limiter is a token bucket with a shared backoff window.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewLimiter creates a limiter from settings. A non-positive rate disables throttling.
func NewLimiter(cfg domain.RateLimitSettings) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		backoff: DefaultBackoff,
	}
}

// Wait blocks until a call may proceed, honouring any active backoff.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Observe starts a backoff window when err reports a provider rate limit.
func (l *Limiter) Observe(err error) {
	if !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retryAt = time.Now().Add(l.backoff)
	logger.Warn("Provider rate limit hit, backing off for %s", l.backoff)
}

// Ensure the decorators implement their ports.
var (
	_ driven.ChatModel        = (*ChatModel)(nil)
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
)

// ChatModel wraps a driven.ChatModel with a Limiter.
type ChatModel struct {
	driven.ChatModel
	limiter *Limiter
}

// WrapChatModel returns model throttled by limiter.
func WrapChatModel(model driven.ChatModel, limiter *Limiter) *ChatModel {
	return &ChatModel{ChatModel: model, limiter: limiter}
}

// Chat waits for the limiter before delegating.
func (m *ChatModel) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}
	reply, err := m.ChatModel.Chat(ctx, messages, opts)
	m.limiter.Observe(err)
	return reply, err
}

// EmbeddingService wraps a driven.EmbeddingService with a Limiter.
type EmbeddingService struct {
	driven.EmbeddingService
	limiter *Limiter
}

// WrapEmbeddingService returns service throttled by limiter.
func WrapEmbeddingService(service driven.EmbeddingService, limiter *Limiter) *EmbeddingService {
	return &EmbeddingService{EmbeddingService: service, limiter: limiter}
}

// Embed waits for the limiter before delegating.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := s.EmbeddingService.Embed(ctx, text)
	s.limiter.Observe(err)
	return vec, err
}

// EmbedBatch waits for the limiter before delegating. A batch costs one token.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	s.limiter.Observe(err)
	return vecs, err
}
