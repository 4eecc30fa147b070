package driven

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// VectorStore holds embedded patient documents and answers patient-filtered
// nearest-neighbour queries.
//
// A document is only ever returned for a query carrying its own patient ID.
type VectorStore interface {
	// Upsert inserts or replaces documents by ID.
	Upsert(ctx context.Context, docs []domain.PatientDocument) error

	// ReplacePatient atomically swaps the patient's whole document set for docs.
	// Readers observe either the old set or the new one.
	ReplacePatient(ctx context.Context, patientID string, docs []domain.PatientDocument) error

	// Query returns up to k documents of patientID closest to vector,
	// best first. Equal distances keep insertion order.
	// A patient with no documents yields an empty slice and nil error.
	Query(ctx context.Context, vector []float32, patientID string, k int) ([]domain.RetrievalHit, error)

	// CountByPatient returns the number of documents stored for patientID.
	CountByPatient(ctx context.Context, patientID string) (int, error)

	// Close releases resources.
	Close() error
}
