package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
)

// Ensure PatientService implements the interface.
var _ driving.PatientService = (*PatientService)(nil)

// PatientService reads stored profiles together with index statistics.
type PatientService struct {
	profiles driven.ProfileStore
	store    driven.VectorStore
}

// NewPatientService creates a new patient service.
// The vector store is optional; without it document counts are zero.
func NewPatientService(profiles driven.ProfileStore, store driven.VectorStore) *PatientService {
	return &PatientService{
		profiles: profiles,
		store:    store,
	}
}

// Get returns the stored profile and how many documents are indexed for it.
func (s *PatientService) Get(ctx context.Context, patientID string) (*driving.PatientDetails, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, fmt.Errorf("%w: patient ID is required", domain.ErrInvalidInput)
	}
	if s.profiles == nil {
		return nil, domain.ErrNotFound
	}

	profile, err := s.profiles.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", patientID, err)
	}

	details := &driving.PatientDetails{
		PatientID: patientID,
		Profile:   *profile,
	}
	if s.store != nil {
		count, err := s.store.CountByPatient(ctx, patientID)
		if err != nil {
			return nil, fmt.Errorf("%w: count documents: %w", domain.ErrVectorStoreUnavailable, err)
		}
		details.DocumentCount = count
	}
	return details, nil
}

// List returns all known patient IDs in ascending order.
func (s *PatientService) List(ctx context.Context) ([]string, error) {
	if s.profiles == nil {
		return []string{}, nil
	}
	ids, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
