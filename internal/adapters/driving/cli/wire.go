package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/ai"
	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/blob/filesystem"
	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/blob/supabase"
	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/config/file"
	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/extractor/pdf"
	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/storage/sqlite"
	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/vectorstore/qdrant"
	"github.com/busraauz/ai-quest-platform/internal/core/agent"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/core/services"
	"github.com/busraauz/ai-quest-platform/internal/logger"
	"github.com/busraauz/ai-quest-platform/internal/postprocessors/chunker"
)

var (
	closersMu sync.Mutex
	closers   []func()

	// appSettings holds the resolved settings once the app has been wired.
	appSettings *domain.AppSettings
)

func onShutdown(fn func()) {
	closersMu.Lock()
	defer closersMu.Unlock()
	closers = append(closers, fn)
}

// shutdown runs registered closers in reverse order.
func shutdown() {
	closersMu.Lock()
	defer closersMu.Unlock()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}

// questHome returns ~/.quest, the home of config.toml and prompts/.
func questHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".quest"), nil
}

// wireServices builds the settings service and, when withApp is set, the
// generation stack. Services that are already assigned are left alone.
func wireServices(_ *cobra.Command, withApp bool) error {
	home, err := questHome()
	if err != nil {
		return err
	}

	if settingsService == nil {
		configStore, err := file.NewConfigStore(home)
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator(), filepath.Join(home, "data"))
	}

	if !withApp || documentService != nil {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if dataDirFlag != "" {
		settings.Storage.DataDir = dataDirFlag
	}
	if settings.Verbose {
		logger.SetVerbose(true)
	}
	appSettings = settings

	return wireApp(settings, filepath.Join(home, "prompts"))
}

// wireApp connects storage, AI providers, agents and services.
func wireApp(settings *domain.AppSettings, promptDir string) error {
	logger.Section("Startup")

	aiResult, err := ai.Init(settings)
	if err != nil {
		return err
	}
	onShutdown(aiResult.Close)
	if aiResult.ChatModel == nil {
		logger.Warn("no chat model configured; generation requests will fail")
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	onShutdown(func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	})
	logger.Debug("database: %s", store.Path())

	blobs, err := newBlobStore(settings)
	if err != nil {
		return err
	}

	backend, err := newChunkRetriever(settings, store)
	if err != nil {
		return err
	}

	promptStore, err := file.NewPromptStore(promptDir, agent.DefaultPrompts())
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}
	prompts := agent.NewPrompts(promptStore)
	protocol := agent.NewProtocol(aiResult.ChatModel, settings.Agent)

	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	documentService = services.NewDocumentService(
		store.SessionStore(),
		store.DocumentStore(),
		store.QuestionStore(),
		blobs,
		pdf.New(),
		splitter,
		services.NewEmbeddingGateway(aiResult.EmbeddingService, settings.Embedding),
		services.NewRetriever(backend),
		agent.NewDocumentAgent(protocol, prompts),
		services.DocumentConfig{
			Bucket:     settings.Storage.DocumentBucket,
			MatchCount: settings.Retrieval.MatchCount,
		},
	)
	similarService = services.NewSimilarService(
		store.SessionStore(),
		store.QuestionStore(),
		blobs,
		agent.NewSimilarAgent(protocol, prompts),
		settings.Storage.SimilarBucket,
	)
	refinementService = services.NewRefinementService(
		store.QuestionStore(),
		agent.NewRefinementAgent(protocol, prompts),
	)
	questionService = services.NewQuestionService(store.QuestionStore(), store.SessionStore())

	logger.Info("storage: %s blobs, %s retrieval", settings.Storage.BlobBackend, settings.Retrieval.Backend)
	return nil
}

func newBlobStore(settings *domain.AppSettings) (driven.BlobStore, error) {
	switch settings.Storage.BlobBackend {
	case domain.BlobSupabase:
		store, err := supabase.New(supabase.Config{
			URL: settings.Storage.SupabaseURL,
			Key: settings.Storage.SupabaseKey,
		})
		if err != nil {
			return nil, fmt.Errorf("supabase blob store: %w", err)
		}
		return store, nil
	case domain.BlobFilesystem, "":
		store, err := filesystem.New(filepath.Join(settings.Storage.DataDir, "blobs"))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", settings.Storage.BlobBackend)
	}
}

func newChunkRetriever(settings *domain.AppSettings, store *sqlite.Store) (driven.ChunkRetriever, error) {
	switch settings.Retrieval.Backend {
	case domain.RetrievalQdrant:
		retriever, err := qdrant.New(qdrant.Config{
			URL:        settings.Retrieval.QdrantURL,
			APIKey:     settings.Retrieval.QdrantAPIKey,
			Collection: settings.Retrieval.QdrantCollection,
			Dimensions: settings.Embedding.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant retriever: %w", err)
		}
		return retriever, nil
	case domain.RetrievalSQLite, "":
		return store.ChunkRetriever(), nil
	default:
		return nil, errors.New("unknown retrieval backend " + string(settings.Retrieval.Backend))
	}
}
