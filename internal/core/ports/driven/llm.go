package driven

import "context"

// LLMService produces the triage reply for one chat turn. Its output is
// untrusted text: callers parse it and fall back when it is malformed.
type LLMService interface {
	// Generate answers userMessage under the given system instructions.
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)

	ModelName() string

	// Ping checks reachability and credentials without running inference.
	Ping(ctx context.Context) error
	Close() error
}
