package driven

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// AlertSink is an append-only alert log addressable by patient ID.
// Push gives no deduplication guarantee.
type AlertSink interface {
	// Push appends an alert record.
	Push(ctx context.Context, alert domain.Alert) error

	// List returns the patient's alerts, oldest first.
	List(ctx context.Context, patientID string) ([]domain.Alert, error)
}
