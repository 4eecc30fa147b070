package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
	"github.com/custodia-labs/postop/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

var retrievalLog = logger.For("retrieval")

// RetrievalService performs patient-scoped semantic search.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	topK     int
}

// NewRetrievalService creates a new retrieval service.
// A defaultK below 1 falls back to domain.DefaultTopK.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore, defaultK int) *RetrievalService {
	if defaultK < 1 {
		defaultK = domain.DefaultTopK
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		topK:     defaultK,
	}
}

// Retrieve embeds the query once and returns up to k of the patient's
// documents, best first.
//
// An unreachable store yields domain.ErrRetrievalUnavailable. A query vector
// whose size differs from the patient's stored documents yields
// domain.ErrDimensionMismatch instead. A patient with no documents yields an
// empty slice.
func (s *RetrievalService) Retrieve(
	ctx context.Context, patientID, query string, k int,
) ([]domain.RetrievalHit, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, fmt.Errorf("%w: patient ID is required", domain.ErrInvalidInput)
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if k == 0 {
		k = s.topK
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrRetrievalUnavailable
	}

	retrievalLog.Debug("patient %s: query=%q k=%d", patientID, query, k)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		retrievalLog.Warn("query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.store.Query(ctx, vector, patientID, k)
	if errors.Is(err, domain.ErrDimensionMismatch) {
		retrievalLog.Warn("patient %s: %v", patientID, err)
		return nil, fmt.Errorf("query embedded by %s: %w; re-ingest the patient after changing embedding models",
			s.embedder.ModelName(), err)
	}
	if err != nil {
		retrievalLog.Warn("store query failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}

	// The store filters by patient; anything else reaching here is dropped.
	scoped := make([]domain.RetrievalHit, 0, len(hits))
	for _, h := range hits {
		if h.PatientID != patientID {
			retrievalLog.Error("store returned a document of %q for patient %q; dropped", h.PatientID, patientID)
			continue
		}
		scoped = append(scoped, h)
		if len(scoped) == k {
			break
		}
	}

	retrievalLog.Debug("patient %s: %d hits", patientID, len(scoped))
	return scoped, nil
}
