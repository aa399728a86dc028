// Package cli provides the quest command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/busraauz/ai-quest-platform/internal/core/ports/driving"
	"github.com/busraauz/ai-quest-platform/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Global flags.
var (
	verbose     bool
	ownerFlag   string
	dataDirFlag string
)

// Services used by the commands. They are filled in by bootstrap before a
// command runs; tests assign mocks directly and disable bootstrap.
var (
	settingsService   driving.SettingsService
	documentService   driving.DocumentGenerationService
	similarService    driving.SimilarGenerationService
	refinementService driving.RefinementService
	questionService   driving.QuestionService
)

// bootstrap builds the services a command needs. Nil disables it.
var bootstrap = wireServices

// needsApp marks commands that require the generation stack (storage and AI).
const needsApp = "quest/app"

var rootCmd = &cobra.Command{
	Use:   "quest",
	Short: "Generate and refine quiz questions with AI",
	Long: `quest turns PDFs and images of existing questions into validated quiz
questions, and keeps an append-only version history of every refinement.

Run 'quest serve' for the HTTP API or 'quest mcp serve' for AI assistants.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "owner ID (default: owner.id from config)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default: ~/.quest/data)")
}

// Execute runs the root command and releases any resources it opened.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	if verbose || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		logger.SetVerbose(true)
	}

	if bootstrap == nil {
		return nil
	}
	return bootstrap(cmd, requiresApp(cmd))
}

// requiresApp reports whether cmd or any parent is annotated with needsApp.
func requiresApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[needsApp] == "true" {
			return true
		}
	}
	return false
}

// resolveOwner returns --owner when set, otherwise the configured local owner.
func resolveOwner() (string, error) {
	if ownerFlag != "" {
		id, err := uuid.Parse(ownerFlag)
		if err != nil {
			return "", fmt.Errorf("invalid --owner %q: must be a UUID", ownerFlag)
		}
		return id.String(), nil
	}
	if settingsService == nil {
		return "", errors.New("settings service not configured")
	}
	return settingsService.OwnerID()
}
