package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// Ensure AlertSink implements the interface.
var _ driven.AlertSink = (*AlertSink)(nil)

// AlertSink is an in-memory append-only alert log.
type AlertSink struct {
	mu     sync.RWMutex
	alerts map[string][]domain.Alert
}

// NewAlertSink creates a new in-memory alert sink.
func NewAlertSink() *AlertSink {
	return &AlertSink{
		alerts: make(map[string][]domain.Alert),
	}
}

// Push appends an alert record.
func (s *AlertSink) Push(_ context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.PatientID] = append(s.alerts[alert.PatientID], alert)
	return nil
}

// List returns the patient's alerts, oldest first.
func (s *AlertSink) List(_ context.Context, patientID string) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Alert, len(s.alerts[patientID]))
	copy(out, s.alerts[patientID])
	return out, nil
}
