package driving

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// ChatService runs one retrieval-augmented triage turn.
type ChatService interface {
	// Chat answers the message and triages it, raising an alert when urgent.
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}
