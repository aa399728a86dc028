package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOwnerID          = "owner.id"
	keyLLMProvider      = "llm.provider"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMModel         = "llm.model"
	keyLLMAPIKey        = "llm.api_key"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedModel       = "embedding.model"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDims        = "embedding.dimensions"
	keyEmbedBatch       = "embedding.batch_size"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyMatchCount       = "retrieval.match_count"
	keyRetrievalBackend = "retrieval.backend"
	keyQdrantURL        = "qdrant.url"
	keyQdrantAPIKey     = "qdrant.api_key"
	keyQdrantCollection = "qdrant.collection"
	keyAgentRetries     = "agent.max_retries"
	keyAgentTemperature = "agent.temperature"
	keyAgentTimeout     = "agent.call_timeout"
	keyRateRPS          = "ratelimit.rps"
	keyRateBurst        = "ratelimit.burst"
	keyDataDir          = "storage.data_dir"
	keyBlobBackend      = "storage.blob_backend"
	keyDocBucket        = "storage.doc_bucket"
	keySimilarBucket    = "storage.similar_bucket"
	keySupabaseURL      = "supabase.url"
	keySupabaseKey      = "supabase.storage_key"
	keyServerAddr       = "server.addr"
	keyFrontendURL      = "server.frontend_url"
	keyVerbose          = "log.verbose"
)

// envOverrides maps config keys to the environment variables that override them.
var envOverrides = map[string]string{
	keyLLMProvider:      "QUEST_LLM_PROVIDER",
	keyLLMBaseURL:       "OPENROUTER_BASE_URL",
	keyLLMModel:         "QUEST_MODEL",
	keyLLMAPIKey:        "OPENROUTER_API_KEY",
	keyEmbedProvider:    "QUEST_EMBEDDING_PROVIDER",
	keyEmbedBaseURL:     "EMBEDDING_BASE_URL",
	keyEmbedModel:       "EMBEDDING_MODEL",
	keyEmbedAPIKey:      "EMBEDDING_API_KEY",
	keyEmbedDims:        "EMBEDDING_DIM",
	keyEmbedBatch:       "EMBEDDING_BATCH_SIZE",
	keyChunkSize:        "PDF_CHUNK_SIZE",
	keyChunkOverlap:     "PDF_CHUNK_OVERLAP",
	keyMatchCount:       "RETRIEVAL_MATCH_COUNT",
	keyRetrievalBackend: "RETRIEVAL_BACKEND",
	keyQdrantURL:        "QDRANT_URL",
	keyQdrantAPIKey:     "QDRANT_API_KEY",
	keyQdrantCollection: "QDRANT_COLLECTION",
	keyAgentRetries:     "AGENT_MAX_RETRIES",
	keyAgentTemperature: "AGENT_TEMPERATURE",
	keyAgentTimeout:     "AGENT_CALL_TIMEOUT",
	keyRateRPS:          "QUEST_RATE_LIMIT_RPS",
	keyRateBurst:        "QUEST_RATE_LIMIT_BURST",
	keyDataDir:          "QUEST_DATA_DIR",
	keyBlobBackend:      "BLOB_BACKEND",
	keyDocBucket:        "SUPABASE_STORAGE_DOC_BUCKET",
	keySimilarBucket:    "SUPABASE_STORAGE_SIMILAR_BUCKET",
	keySupabaseURL:      "SUPABASE_URL",
	keySupabaseKey:      "SUPABASE_STORAGE_KEY",
	keyServerAddr:       "QUEST_ADDR",
	keyFrontendURL:      "FRONTEND_URL",
	keyVerbose:          "QUEST_VERBOSE",
}

// SettingsService resolves application settings from defaults, the config
// store and environment variables, in increasing order of precedence.
type SettingsService struct {
	configStore    driven.ConfigStore
	aiValidator    driven.AIConfigValidator
	defaultDataDir string
	lookupEnv      func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// defaultDataDir is used when neither the config file nor QUEST_DATA_DIR set one.
func NewSettingsService(
	configStore driven.ConfigStore,
	aiValidator driven.AIConfigValidator,
	defaultDataDir string,
) *SettingsService {
	return &SettingsService{
		configStore:    configStore,
		aiValidator:    aiValidator,
		defaultDataDir: defaultDataDir,
		lookupEnv:      os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	llm := domain.LLMSettings{
		Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
		BaseURL:  s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
		Model:    s.getString(keyLLMModel, defaults.LLM.Model),
		APIKey:   s.getString(keyLLMAPIKey, ""),
	}

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	embedBaseURL := s.getString(keyEmbedBaseURL, "")
	embedAPIKey := s.getString(keyEmbedAPIKey, "")
	// An OpenAI-compatible embedding endpoint shares the chat endpoint unless told otherwise.
	if embedProvider == llm.Provider {
		if embedBaseURL == "" {
			embedBaseURL = llm.BaseURL
		}
		if embedAPIKey == "" {
			embedAPIKey = llm.APIKey
		}
	}

	timeout, err := s.getDuration(keyAgentTimeout, defaults.Agent.CallTimeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		OwnerID: s.getString(keyOwnerID, ""),
		LLM:     llm,
		Embedding: domain.EmbeddingSettings{
			Provider:   embedProvider,
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    embedBaseURL,
			APIKey:     embedAPIKey,
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
			BatchSize:  s.getInt(keyEmbedBatch, defaults.Embedding.BatchSize),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			MatchCount:       s.getInt(keyMatchCount, defaults.Retrieval.MatchCount),
			Backend:          domain.RetrievalBackend(s.getString(keyRetrievalBackend, string(defaults.Retrieval.Backend))),
			QdrantURL:        s.getString(keyQdrantURL, ""),
			QdrantAPIKey:     s.getString(keyQdrantAPIKey, ""),
			QdrantCollection: s.getString(keyQdrantCollection, defaults.Retrieval.QdrantCollection),
		},
		Agent: domain.AgentSettings{
			MaxRetries:  s.getInt(keyAgentRetries, defaults.Agent.MaxRetries),
			Temperature: s.getFloat(keyAgentTemperature, defaults.Agent.Temperature),
			CallTimeout: timeout,
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRateRPS, defaults.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(keyRateBurst, defaults.RateLimit.Burst),
		},
		Storage: domain.StorageSettings{
			DataDir:        expandHome(s.getString(keyDataDir, s.defaultDataDir)),
			BlobBackend:    domain.BlobBackend(s.getString(keyBlobBackend, string(defaults.Storage.BlobBackend))),
			DocumentBucket: s.getString(keyDocBucket, defaults.Storage.DocumentBucket),
			SimilarBucket:  s.getString(keySimilarBucket, defaults.Storage.SimilarBucket),
			SupabaseURL:    s.getString(keySupabaseURL, ""),
			SupabaseKey:    s.getString(keySupabaseKey, ""),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, defaults.Server.Addr),
			FrontendURL: s.getString(keyFrontendURL, defaults.Server.FrontendURL),
		},
		Verbose: s.getBool(keyVerbose, false),
	}

	return settings, nil
}

// Set stores a single key in the config store after checking it parses.
func (s *SettingsService) Set(key, value string) error {
	if _, ok := envOverrides[key]; !ok && key != keyOwnerID {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any = value
	switch key {
	case keyEmbedDims, keyEmbedBatch, keyChunkSize, keyChunkOverlap, keyMatchCount,
		keyAgentRetries, keyRateBurst:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case keyAgentTemperature, keyRateRPS:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case keyAgentTimeout:
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 90s", domain.ErrInvalidInput, key)
		}
	case keyVerbose:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case keyLLMProvider, keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
	case keyRetrievalBackend:
		if b := domain.RetrievalBackend(value); b != domain.RetrievalSQLite && b != domain.RetrievalQdrant {
			return fmt.Errorf("%w: invalid retrieval backend %q", domain.ErrInvalidInput, value)
		}
	case keyBlobBackend:
		if b := domain.BlobBackend(value); b != domain.BlobFilesystem && b != domain.BlobSupabase {
			return fmt.Errorf("%w: invalid blob backend %q", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised configuration key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(envOverrides)+1)
	keys = append(keys, keyOwnerID)
	for k := range envOverrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvVar returns the environment variable that overrides key, if any.
func EnvVar(key string) string {
	return envOverrides[key]
}

// OwnerID returns the local owner, generating and saving one on first use.
func (s *SettingsService) OwnerID() (string, error) {
	if id := s.configStore.GetString(keyOwnerID); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id, nil
		}
	}

	id := uuid.New().String()
	if err := s.configStore.Set(keyOwnerID, id); err != nil {
		return "", fmt.Errorf("save owner id: %w", err)
	}
	return id, nil
}

// Validate checks that the chat model and embedding provider are configured
// and, when a validator is available, reachable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: set %s or run 'quest settings set %s <key>'",
			domain.ErrLLMUnavailable, envOverrides[keyLLMAPIKey], keyLLMAPIKey)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not usable",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if settings.Chunking.Size <= 0 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyChunkSize)
	}
	if settings.Retrieval.Backend == domain.RetrievalQdrant && settings.Retrieval.QdrantURL == "" {
		return fmt.Errorf("%w: retrieval backend qdrant requires %s", domain.ErrInvalidInput, keyQdrantURL)
	}
	if settings.Storage.BlobBackend == domain.BlobSupabase &&
		(settings.Storage.SupabaseURL == "" || settings.Storage.SupabaseKey == "") {
		return fmt.Errorf("%w: blob backend supabase requires %s and %s",
			domain.ErrInvalidInput, keySupabaseURL, keySupabaseKey)
	}

	if s.aiValidator == nil {
		return nil
	}
	if err := s.aiValidator.ValidateLLM(&settings.LLM); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if err := s.aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	defaults.Storage.DataDir = s.defaultDataDir
	return defaults
}

// Helper methods for reading config with env overrides and defaults.

// raw returns the env override for key if set, else the stored value.
func (s *SettingsService) raw(key string) (string, bool) {
	if env, ok := envOverrides[key]; ok && s.lookupEnv != nil {
		if v, ok := s.lookupEnv(env); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	if v, ok := s.configStore.Get(key); ok {
		str := strings.TrimSpace(fmt.Sprint(v))
		return str, str != ""
	}
	return "", false
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.raw(key); ok {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	v, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	v, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	v, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v, ok := s.raw(key)
	if !ok {
		return defaultVal, nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}

func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	v, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	provider := domain.AIProvider(v)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
