package driving

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// RetrievalService performs patient-scoped semantic search.
type RetrievalService interface {
	// Retrieve returns up to k hits from patientID's documents, best first.
	// A k of zero selects the configured default; a negative k is invalid.
	Retrieve(ctx context.Context, patientID, query string, k int) ([]domain.RetrievalHit, error)
}
