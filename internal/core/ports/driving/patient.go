package driving

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// PatientService reads stored patient profiles.
type PatientService interface {
	// Get returns the stored profile and its indexed document count.
	Get(ctx context.Context, patientID string) (*PatientDetails, error)

	// List returns all known patient IDs.
	List(ctx context.Context) ([]string, error)
}

// PatientDetails is a stored profile plus index statistics.
type PatientDetails struct {
	PatientID     string
	Profile       domain.PatientProfile
	DocumentCount int
}
