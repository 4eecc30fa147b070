package driving

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// IngestService turns patient profiles into embedded, patient-scoped documents.
type IngestService interface {
	// Ingest generates, embeds and stores the documents for one profile.
	// On error no document of this call is reported committed.
	Ingest(ctx context.Context, patientID string, profile domain.PatientProfile) ([]domain.PatientDocument, error)
}
