package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/storage/memory"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// newTestSettings returns a settings service whose environment is env.
func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil, "/tmp/quest-data")
	service.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return service, store
}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	llmErr   error
	embedErr error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return m.embedErr }
func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error             { return m.llmErr }

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.LLM.Model, settings.LLM.Model)
	assert.Equal(t, domain.DefaultLLMBaseURL, settings.LLM.BaseURL)
	assert.Equal(t, domain.DefaultEmbeddingDim, settings.Embedding.Dimensions)
	assert.Equal(t, domain.DefaultEmbeddingBatch, settings.Embedding.BatchSize)
	assert.Equal(t, domain.DefaultChunkSize, settings.Chunking.Size)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.Chunking.Overlap)
	assert.Equal(t, domain.DefaultMatchCount, settings.Retrieval.MatchCount)
	assert.Equal(t, domain.RetrievalSQLite, settings.Retrieval.Backend)
	assert.Equal(t, domain.DefaultMaxRetries, settings.Agent.MaxRetries)
	assert.InDelta(t, domain.DefaultTemperature, settings.Agent.Temperature, 1e-9)
	assert.Equal(t, domain.DefaultCallTimeout, settings.Agent.CallTimeout)
	assert.Equal(t, "/tmp/quest-data", settings.Storage.DataDir)
	assert.Equal(t, domain.BlobFilesystem, settings.Storage.BlobBackend)
	assert.Equal(t, ":8000", settings.Server.Addr)
}

func TestSettingsService_Get_EnvOverridesConfig(t *testing.T) {
	service, store := newTestSettings(map[string]string{
		"QUEST_MODEL":        "anthropic/claude-3.5-sonnet",
		"EMBEDDING_DIM":      "768",
		"AGENT_CALL_TIMEOUT": "45",
		"PDF_CHUNK_SIZE":     "  ",
	})
	require.NoError(t, store.Set(keyLLMModel, "from-config"))
	require.NoError(t, store.Set(keyChunkSize, 2000))
	require.NoError(t, store.Set(keyMatchCount, 4))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", settings.LLM.Model)
	assert.Equal(t, 768, settings.Embedding.Dimensions)
	assert.Equal(t, 45*time.Second, settings.Agent.CallTimeout)
	assert.Equal(t, 2000, settings.Chunking.Size, "blank env values are ignored")
	assert.Equal(t, 4, settings.Retrieval.MatchCount)
}

func TestSettingsService_Get_EmbeddingSharesLLMEndpoint(t *testing.T) {
	service, _ := newTestSettings(map[string]string{"OPENROUTER_API_KEY": "sk-or"})

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-or", settings.Embedding.APIKey)
	assert.Equal(t, settings.LLM.BaseURL, settings.Embedding.BaseURL)

	service, _ = newTestSettings(map[string]string{
		"OPENROUTER_API_KEY":       "sk-or",
		"QUEST_EMBEDDING_PROVIDER": "ollama",
	})
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Empty(t, settings.Embedding.APIKey)
	assert.Empty(t, settings.Embedding.BaseURL)
}

func TestSettingsService_Get_InvalidTimeout(t *testing.T) {
	service, _ := newTestSettings(map[string]string{"AGENT_CALL_TIMEOUT": "soon"})

	_, err := service.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newTestSettings(nil)

	require.NoError(t, service.Set("embedding.dimensions", "3072"))
	assert.Equal(t, 3072, store.GetInt("embedding.dimensions"))

	require.NoError(t, service.Set("agent.temperature", "0.5"))
	assert.InDelta(t, 0.5, store.GetFloat("agent.temperature"), 1e-9)

	require.NoError(t, service.Set("agent.call_timeout", "90s"))
	require.NoError(t, service.Set("agent.call_timeout", "90"))
	require.NoError(t, service.Set("log.verbose", "true"))
	assert.True(t, store.GetBool("log.verbose"))

	require.NoError(t, service.Set("llm.provider", "anthropic"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
}

func TestSettingsService_SetRejectsInvalid(t *testing.T) {
	service, _ := newTestSettings(nil)

	tests := []struct{ key, value string }{
		{"no.such.key", "x"},
		{"embedding.dimensions", "wide"},
		{"chunking.size", "-1"},
		{"agent.temperature", "hot"},
		{"agent.call_timeout", "later"},
		{"log.verbose", "loud"},
		{"llm.provider", "acme"},
		{"retrieval.backend", "faiss"},
		{"storage.blob_backend", "s3"},
	}
	for _, tt := range tests {
		err := service.Set(tt.key, tt.value)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, tt.key)
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newTestSettings(nil)

	keys := service.Keys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "owner.id")
	assert.Contains(t, keys, "qdrant.url")
	assert.Equal(t, "OPENROUTER_API_KEY", EnvVar("llm.api_key"))
	assert.Empty(t, EnvVar("owner.id"))
}

func TestSettingsService_OwnerIDIsGeneratedOnce(t *testing.T) {
	service, store := newTestSettings(nil)

	first, err := service.OwnerID()
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, first, store.GetString("owner.id"))

	second, err := service.OwnerID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSettingsService_Validate(t *testing.T) {
	service, _ := newTestSettings(nil)
	assert.ErrorIs(t, service.Validate(), domain.ErrLLMUnavailable)

	service, _ = newTestSettings(map[string]string{"OPENROUTER_API_KEY": "sk"})
	assert.NoError(t, service.Validate())

	service, _ = newTestSettings(map[string]string{
		"OPENROUTER_API_KEY": "sk",
		"RETRIEVAL_BACKEND":  "qdrant",
	})
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)

	service, _ = newTestSettings(map[string]string{
		"OPENROUTER_API_KEY": "sk",
		"BLOB_BACKEND":       "supabase",
		"SUPABASE_URL":       "https://x.supabase.co",
	})
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
}

func TestSettingsService_ValidateUsesAIValidator(t *testing.T) {
	service, _ := newTestSettings(map[string]string{"OPENROUTER_API_KEY": "sk"})
	validator := &mockAIValidator{embedErr: errors.New("connection refused")}
	service.aiValidator = validator

	err := service.Validate()

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	validator.embedErr = nil
	validator.llmErr = errors.New("401")
	assert.ErrorIs(t, service.Validate(), domain.ErrLLMUnavailable)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newTestSettings(nil)

	defaults := service.GetDefaults()

	assert.Equal(t, "/tmp/quest-data", defaults.Storage.DataDir)
	assert.Equal(t, domain.DefaultLLMModel, defaults.LLM.Model)
}
