package driving

import "github.com/custodia-labs/postop/internal/core/domain"

// SettingsService is the configuration surface behind `postop settings`.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider and SetLLMProvider fill an empty model with the
	// provider default and reject a cloud provider without a key.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	SetTopK(k int) error

	// SetLLMRateLimit caps model calls per second; zero disables throttling.
	SetLLMRateLimit(requestsPerSecond float64) error

	// Validate fails unless a chat turn could run with the current settings.
	Validate() error
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured providers.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
