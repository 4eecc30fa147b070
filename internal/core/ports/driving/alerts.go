package driving

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// AlertService reads the alert log.
type AlertService interface {
	// List returns the patient's alerts, oldest first.
	List(ctx context.Context, patientID string) ([]domain.Alert, error)
}
