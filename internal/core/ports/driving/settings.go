package driving

import "github.com/busraauz/ai-quest-platform/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves current settings: defaults, then the config file, then
	// environment variables.
	Get() (*domain.AppSettings, error)

	// Set stores a single configuration key in the config file.
	Set(key, value string) error

	// Keys returns every recognised configuration key.
	Keys() []string

	// OwnerID returns the local owner ID, generating and persisting one on first use.
	OwnerID() (string, error)

	// Validate checks that the chat model and embedding provider are configured.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
