package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// alertSink wraps Store to implement driven.AlertSink.
type alertSink struct {
	store *Store
}

var _ driven.AlertSink = (*alertSink)(nil)

// Push appends an alert record.
func (s *alertSink) Push(ctx context.Context, alert domain.Alert) error {
	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO alerts (patient_id, ts, message) VALUES (?, ?, ?)",
		alert.PatientID, ts.UTC(), alert.Message)
	if err != nil {
		return fmt.Errorf("saving alert: %w", err)
	}
	return nil
}

// List returns the patient's alerts, oldest first.
func (s *alertSink) List(ctx context.Context, patientID string) ([]domain.Alert, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT patient_id, ts, message
		FROM alerts
		WHERE patient_id = ?
		ORDER BY seq
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.PatientID, &a.Timestamp, &a.Message); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
