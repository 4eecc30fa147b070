package driven

import "context"

// EmbeddingService maps text to fixed-size vectors. The same model must
// embed documents and queries, so a model change means re-ingesting.
// Adapters exist for Gemini, OpenAI and Ollama.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks reachability and credentials without embedding anything.
	Ping(ctx context.Context) error
	Close() error
}
