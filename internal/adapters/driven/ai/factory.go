// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/busraauz/ai-quest-platform/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/busraauz/ai-quest-platform/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/busraauz/ai-quest-platform/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/busraauz/ai-quest-platform/internal/adapters/driven/llm/ollama"
	openaillm "github.com/busraauz/ai-quest-platform/internal/adapters/driven/llm/openai"
	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/ratelimit"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	ChatModel        driven.ChatModel
	EmbeddingService driven.EmbeddingService
	Limiter          *ratelimit.Limiter
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.ChatModel != nil {
		r.ChatModel.Close()
	}
}

// Init builds the chat model and embedding service from settings, both
// throttled by one shared limiter. Unconfigured providers are left nil; the
// services report them as unavailable when a request needs them.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	result := &InitResult{Limiter: ratelimit.NewLimiter(settings.RateLimit)}

	model, err := CreateChatModel(&settings.LLM, settings.Agent.CallTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if model != nil {
		result.ChatModel = ratelimit.WrapChatModel(model, result.Limiter)
	}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedder != nil {
		result.EmbeddingService = ratelimit.WrapEmbeddingService(embedder, result.Limiter)
	}

	return result, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates a chat model configuration by creating a model and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	model, err := CreateChatModel(settings, 0)
	if err != nil {
		return err
	}
	if model == nil {
		return nil
	}
	defer model.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return model.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateChatModel creates the chat model selected by settings. A zero
// timeout leaves the adapter default in place.
// Returns nil if the provider is not configured.
func CreateChatModel(settings *domain.LLMSettings, timeout time.Duration) (driven.ChatModel, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewChatModel(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewChatModel(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewChatModel(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
