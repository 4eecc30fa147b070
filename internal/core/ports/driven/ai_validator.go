package driven

import "github.com/custodia-labs/postop/internal/core/domain"

// AIConfigValidator checks provider settings against the live service.
// Settings that are not configured yet validate as nil.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
