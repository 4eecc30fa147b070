package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// profileStore wraps Store to implement driven.ProfileStore.
type profileStore struct {
	store *Store
}

var _ driven.ProfileStore = (*profileStore)(nil)

// Save stores or replaces the profile for patientID.
func (s *profileStore) Save(ctx context.Context, patientID string, profile domain.PatientProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO patient_profiles (patient_id, profile, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(patient_id) DO UPDATE SET
			profile = excluded.profile,
			updated_at = excluded.updated_at
	`, patientID, string(data), now, now)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Get retrieves a profile by patient ID.
func (s *profileStore) Get(ctx context.Context, patientID string) (*domain.PatientProfile, error) {
	var data string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT profile FROM patient_profiles WHERE patient_id = ?", patientID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	var profile domain.PatientProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("unmarshaling profile: %w", err)
	}
	return &profile, nil
}

// List returns all stored patient IDs in ascending order.
func (s *profileStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT patient_id FROM patient_profiles ORDER BY patient_id")
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning profile id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
