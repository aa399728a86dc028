package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or chat.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible API, including OpenRouter.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI-compatible providers).
	APIKey string

	// Dimensions is the expected vector width. Every returned vector is checked against it.
	Dimensions int

	// BatchSize is the maximum number of texts per provider call.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds chat model provider configuration.
type LLMSettings struct {
	// Provider is the chat model provider.
	Provider AIProvider

	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI-compatible and Anthropic providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings configures the sliding-window chunker.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// RetrievalBackend selects where chunk vectors are searched.
type RetrievalBackend string

// Available retrieval backends.
const (
	RetrievalSQLite RetrievalBackend = "sqlite"
	RetrievalQdrant RetrievalBackend = "qdrant"
)

// RetrievalSettings configures context retrieval for document generation.
type RetrievalSettings struct {
	// MatchCount is the number of chunks fed to the document agent.
	MatchCount int

	// Backend selects the vector search implementation.
	Backend RetrievalBackend

	// QdrantURL, QdrantAPIKey and QdrantCollection configure the qdrant backend.
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
}

// AgentSettings configures the structured-output agents.
type AgentSettings struct {
	// MaxRetries is the number of corrective retries after the first call.
	MaxRetries int

	// Temperature is the sampling temperature for every agent call.
	Temperature float64

	// CallTimeout bounds each individual model call.
	CallTimeout time.Duration
}

// RateLimitSettings throttles outbound model and embedding calls.
type RateLimitSettings struct {
	RequestsPerSecond float64
	Burst             int
}

// BlobBackend selects where uploaded files are written.
type BlobBackend string

// Available blob backends.
const (
	BlobFilesystem BlobBackend = "filesystem"
	BlobSupabase   BlobBackend = "supabase"
)

// StorageSettings configures persistence.
type StorageSettings struct {
	// DataDir holds the SQLite database and, for the filesystem backend, blobs.
	DataDir string

	// BlobBackend selects the blob store.
	BlobBackend BlobBackend

	// DocumentBucket receives uploaded PDFs.
	DocumentBucket string

	// SimilarBucket receives uploaded seed images.
	SimilarBucket string

	// SupabaseURL and SupabaseKey configure the supabase blob backend.
	SupabaseURL string
	SupabaseKey string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// FrontendURL is allowed by CORS in addition to localhost:3000.
	FrontendURL string
}

// AppSettings holds all application settings.
type AppSettings struct {
	OwnerID   string
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Agent     AgentSettings
	RateLimit RateLimitSettings
	Storage   StorageSettings
	Server    ServerSettings
	Verbose   bool
}

// Default setting values.
const (
	DefaultLLMBaseURL        = "https://openrouter.ai/api/v1"
	DefaultLLMModel          = "openai/gpt-4o-mini"
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultEmbeddingDim      = 1536
	DefaultEmbeddingBatch    = 64
	DefaultChunkSize         = 3500
	DefaultChunkOverlap      = 400
	DefaultMatchCount        = 6
	DefaultMaxRetries        = 2
	DefaultTemperature       = 0.2
	DefaultCallTimeout       = 120 * time.Second
	DefaultQdrantCollection  = "doc_chunks"
	DefaultDocumentBucket    = "documents"
	DefaultSimilarBucket     = "similar-questions"
	DefaultServerAddr        = ":8000"
	DefaultFrontendURL       = "http://localhost:3000"
	DefaultRequestsPerSecond = 5.0
	DefaultRateBurst         = 10
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys and the data directory are left empty.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModel,
			BaseURL:  DefaultLLMBaseURL,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOpenAI,
			Model:      DefaultEmbeddingModel,
			Dimensions: DefaultEmbeddingDim,
			BatchSize:  DefaultEmbeddingBatch,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			MatchCount:       DefaultMatchCount,
			Backend:          RetrievalSQLite,
			QdrantCollection: DefaultQdrantCollection,
		},
		Agent: AgentSettings{
			MaxRetries:  DefaultMaxRetries,
			Temperature: DefaultTemperature,
			CallTimeout: DefaultCallTimeout,
		},
		RateLimit: RateLimitSettings{
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultRateBurst,
		},
		Storage: StorageSettings{
			BlobBackend:    BlobFilesystem,
			DocumentBucket: DefaultDocumentBucket,
			SimilarBucket:  DefaultSimilarBucket,
		},
		Server: ServerSettings{
			Addr:        DefaultServerAddr,
			FrontendURL: DefaultFrontendURL,
		},
	}
}

// DefaultLLMModels returns default models for each chat provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llava",
		AIProviderOpenAI:    DefaultLLMModel,
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
