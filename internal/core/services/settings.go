package services

import (
	"fmt"
	"math"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Keys under which settings are persisted.
//
//nolint:gosec // G101: key names, not credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMRate         = "llm.requests_per_second"
	keyRetrievalTopK   = "retrieval.top_k"
	keyIngestReplacing = "ingest.replace_existing"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService reads and writes AppSettings through a ConfigStore.
// Missing or malformed keys read back as their defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService wires the store and an optional provider validator.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get assembles the current settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()
	out := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:             s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerSecond: s.getFloat(keyLLMRate, d.LLM.RequestsPerSecond),
		},
		Retrieval: domain.RetrievalSettings{TopK: s.getInt(keyRetrievalTopK, d.Retrieval.TopK)},
		Ingest:    domain.IngestSettings{ReplaceExisting: s.getBool(keyIngestReplacing, d.Ingest.ReplaceExisting)},
	}
	if out.Retrieval.TopK < 1 {
		out.Retrieval.TopK = d.Retrieval.TopK
	}
	return out, nil
}

type entry struct {
	key   string
	value any
}

// Save writes every setting. Empty API keys are skipped so a key supplied
// by the environment is never blanked on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	entries := []entry{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyLLMRate, settings.LLM.RequestsPerSecond},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyIngestReplacing, settings.Ingest.ReplaceExisting},
	}
	for _, e := range entries {
		if (e.key == keyEmbedAPIKey || e.key == keyLLMAPIKey) && e.value == "" {
			continue
		}
		if err := s.configStore.Set(e.key, e.value); err != nil {
			return fmt.Errorf("save %s: %w", e.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetTopK sets the default number of retrieved snippets.
func (s *SettingsService) SetTopK(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: top_k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	return s.configStore.Set(keyRetrievalTopK, k)
}

// SetLLMRateLimit sets the maximum model calls per second.
func (s *SettingsService) SetLLMRateLimit(requestsPerSecond float64) error {
	if requestsPerSecond < 0 || math.IsNaN(requestsPerSecond) || math.IsInf(requestsPerSecond, 0) {
		return fmt.Errorf("%w: requests per second must be a non-negative number", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyLLMRate, requestsPerSecond)
}

// Validate reports the first missing piece a chat turn would need.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider is not configured; run 'postop settings embedding'")
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider is not configured; run 'postop settings llm'")
	}
	if settings.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: retrieval top_k must be at least 1", domain.ErrInvalidInput)
	}

	return nil
}

func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig pings the configured embedding provider. It is a
// no-op without a validator.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getFloat falls back to the default for missing or non-numeric values,
// so a stored 0 still turns rate limiting off.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch val.(type) {
	case float64, int64, int:
		return s.configStore.GetFloat(key)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor keeps a local provider's base URL and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
