package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/postop/internal/adapters/driven/llm/ratelimit"
	"github.com/custodia-labs/postop/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})

	t.Run("close with services", func(t *testing.T) {
		embed, err := newOllamaEmbedder(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			Model:    "nomic-embed-text",
		})
		require.NoError(t, err)
		llm, err := newOllamaLLM(&domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			Model:    "llama3.2",
		})
		require.NoError(t, err)

		result := &InitResult{EmbeddingService: embed, LLMService: llm}
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "gemini provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
				Model:    "text-embedding-004",
			},
		},
		{
			// Anthropic has no embedding API, so the settings never count as configured.
			name: "anthropic provider returns nil",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantNil: true,
		},
		{
			name:     "unknown provider returns nil",
			settings: &domain.EmbeddingSettings{Provider: "unknown", APIKey: "test-key"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			svc.Close()
		})
	}
}

func TestCreateEmbeddingService_KnownDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderGemini,
		APIKey:   "test-key",
		Model:    "text-embedding-004",
	})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, 768, svc.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
		},
		{
			name: "gemini provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
				Model:    "gemini-2.5-flash",
			},
		},
		{
			name:     "missing api key returns nil",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.settings.Model, svc.ModelName())
			svc.Close()
		})
	}
}

func TestInitialise(t *testing.T) {
	t.Run("nil settings", func(t *testing.T) {
		result := Initialise(nil)
		assert.Nil(t, result.EmbeddingService)
		assert.Nil(t, result.LLMService)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("unconfigured providers are warnings", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		result := Initialise(&settings)
		assert.Nil(t, result.EmbeddingService)
		assert.Nil(t, result.LLMService)
		require.Len(t, result.Warnings, 2)
		assert.Contains(t, result.Warnings[0], "postop settings embedding")
		assert.Contains(t, result.Warnings[1], "postop settings llm")
	})

	t.Run("llm is rate limited", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "all-minilm"}
		settings.LLM.Provider = domain.AIProviderOllama
		settings.LLM.Model = "llama3.2"

		result := Initialise(&settings)
		defer result.Close()

		assert.Empty(t, result.Warnings)
		require.NotNil(t, result.EmbeddingService)
		require.NotNil(t, result.LLMService)
		assert.IsType(t, &ratelimit.LLMService{}, result.LLMService)
		assert.Equal(t, "llama3.2", result.LLMService.ModelName())
	})

	t.Run("zero rate disables throttling", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}

		result := Initialise(&settings)
		defer result.Close()

		require.NotNil(t, result.LLMService)
		_, throttled := result.LLMService.(*ratelimit.LLMService)
		assert.False(t, throttled)
	})
}

func TestProviderTables_CoverDomain(t *testing.T) {
	for _, p := range domain.AllEmbeddingProviders() {
		assert.Contains(t, embedders, p)
	}
	for _, p := range domain.AllLLMProviders() {
		assert.Contains(t, llms, p)
	}
}

func TestKnownDimensions(t *testing.T) {
	assert.Equal(t, 768, knownDimensions("nomic-embed-text"))
	assert.Equal(t, 0, knownDimensions("custom-model"))
}
