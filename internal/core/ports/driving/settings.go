package driving

import "github.com/custodia-labs/canvai/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set updates a single dotted key after validating it.
	Set(key, value string) error

	// SetLLMKey stores the LLM API key.
	SetLLMKey(key string) error

	// Keys returns every stored key.
	Keys() []string

	// Value returns the stored value of a key for display. API keys are masked.
	Value(key string) string

	// Validate checks the configured providers are reachable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
