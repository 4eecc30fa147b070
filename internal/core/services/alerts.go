package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
)

// Ensure AlertService implements the interface.
var _ driving.AlertService = (*AlertService)(nil)

// AlertService reads the alert log.
type AlertService struct {
	sink driven.AlertSink
}

// NewAlertService creates a new alert service.
func NewAlertService(sink driven.AlertSink) *AlertService {
	return &AlertService{sink: sink}
}

// List returns the patient's alerts, oldest first.
func (s *AlertService) List(ctx context.Context, patientID string) ([]domain.Alert, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, fmt.Errorf("%w: patient ID is required", domain.ErrInvalidInput)
	}
	if s.sink == nil {
		return nil, domain.ErrAlertUnavailable
	}

	alerts, err := s.sink.List(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAlertUnavailable, err)
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts, nil
}
