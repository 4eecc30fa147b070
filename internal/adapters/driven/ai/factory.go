// Package ai builds the embedding and LLM adapters named in AppSettings.
package ai

import (
	"context"
	"fmt"

	geminiembed "github.com/custodia-labs/postop/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/postop/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/postop/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/postop/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/postop/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/postop/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/postop/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/postop/internal/adapters/driven/llm/ratelimit"
	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

type (
	embedderFunc func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	llmFunc      func(*domain.LLMSettings) (driven.LLMService, error)
)

var embedders = map[domain.AIProvider]embedderFunc{
	domain.AIProviderOllama: newOllamaEmbedder,
	domain.AIProviderOpenAI: newOpenAIEmbedder,
	domain.AIProviderGemini: newGeminiEmbedder,
}

var llms = map[domain.AIProvider]llmFunc{
	domain.AIProviderOllama:    newOllamaLLM,
	domain.AIProviderOpenAI:    newOpenAILLM,
	domain.AIProviderAnthropic: newAnthropicLLM,
	domain.AIProviderGemini:    newGeminiLLM,
}

// InitResult holds whichever AI services could be built.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // one per service left nil
}

// Close closes the services that were built.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Initialise builds both services without contacting them. A service that
// cannot be built is left nil with a warning: chat then falls back to
// keyword triage, and ingestion and retrieval report the embedder missing.
// The LLM is wrapped in the configured rate limit.
func Initialise(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	if settings == nil {
		result.Warnings = append(result.Warnings, "no settings loaded")
		return result
	}

	if !settings.Embedding.IsConfigured() {
		result.Warnings = append(result.Warnings,
			"embedding provider is not configured; run 'postop settings embedding'")
	} else if svc, err := CreateEmbeddingService(&settings.Embedding); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	} else {
		result.EmbeddingService = svc
	}

	if !settings.LLM.IsConfigured() {
		result.Warnings = append(result.Warnings,
			"LLM provider is not configured; run 'postop settings llm'")
	} else if svc, err := CreateLLMService(&settings.LLM); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm: %v", err))
	} else {
		result.LLMService = ratelimit.Wrap(svc, settings.LLM.RequestsPerSecond)
	}

	return result
}

// CreateEmbeddingService returns nil, nil for nil or unconfigured settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := embedders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	return build(settings)
}

// CreateLLMService returns nil, nil for nil or unconfigured settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := llms[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	return build(settings)
}

// knownDimensions is zero for models missing from the table; each adapter
// then applies its own default.
func knownDimensions(model string) int {
	return domain.EmbeddingDimensions()[model]
}

func newOllamaEmbedder(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    s.BaseURL,
		Model:      s.Model,
		Dimensions: knownDimensions(s.Model),
	}), nil
}

func newOpenAIEmbedder(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     s.APIKey,
		BaseURL:    s.BaseURL,
		Model:      s.Model,
		Dimensions: knownDimensions(s.Model),
	})
}

func newGeminiEmbedder(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
		APIKey:     s.APIKey,
		BaseURL:    s.BaseURL,
		Model:      s.Model,
		Dimensions: knownDimensions(s.Model),
	})
}

func newOllamaLLM(s *domain.LLMSettings) (driven.LLMService, error) {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: s.BaseURL, Model: s.Model}), nil
}

func newOpenAILLM(s *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
}

func newAnthropicLLM(s *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
}

func newGeminiLLM(s *domain.LLMSettings) (driven.LLMService, error) {
	return geminillm.NewLLMService(context.Background(), geminillm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
}
