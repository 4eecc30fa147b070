package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore is an in-memory implementation of driven.ProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.PatientProfile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]domain.PatientProfile),
	}
}

// Save stores or replaces a profile.
func (s *ProfileStore) Save(_ context.Context, patientID string, profile domain.PatientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[patientID] = profile
	return nil
}

// Get retrieves a profile by patient ID.
func (s *ProfileStore) Get(_ context.Context, patientID string) (*domain.PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[patientID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &profile, nil
}

// List returns all stored patient IDs in ascending order.
func (s *ProfileStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
