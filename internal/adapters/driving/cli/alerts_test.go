package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/postop/internal/core/domain"
)

func TestAlertsListCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	t.Run("lists patient alerts", func(t *testing.T) {
		out, err := execute("alerts", "list", "p4")

		require.NoError(t, err)
		assert.Contains(t, out, "I have chest pain")
	})

	t.Run("empty log", func(t *testing.T) {
		out, err := execute("alerts", "list", "p1")

		require.NoError(t, err)
		assert.Contains(t, out, "No alerts for patient p1.")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute("alerts", "list", "--json", "p4")

		require.NoError(t, err)
		var alerts []domain.Alert
		require.NoError(t, json.Unmarshal([]byte(out), &alerts))
		require.Len(t, alerts, 1)
		assert.Equal(t, "p4", alerts[0].PatientID)
	})

	t.Run("requires patient", func(t *testing.T) {
		_, err := execute("alerts", "list")
		assert.Error(t, err)
	})
}

func TestAlertsListCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := execute("alerts", "list", "p1")

	assert.ErrorIs(t, err, errAlertsNotConfigured)
}
