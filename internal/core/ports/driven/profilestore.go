package driven

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// ProfileStore persists the raw profiles documents are generated from.
type ProfileStore interface {
	// Save stores or replaces the profile for patientID.
	Save(ctx context.Context, patientID string, profile domain.PatientProfile) error

	// Get retrieves a profile. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, patientID string) (*domain.PatientProfile, error)

	// List returns all stored patient IDs in ascending order.
	List(ctx context.Context) ([]string, error)
}
