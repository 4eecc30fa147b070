package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var alertsJSON bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect urgent alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list PATIENT_ID",
	Short: "List a patient's alerts, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsList,
}

func init() {
	alertsListCmd.Flags().BoolVar(&alertsJSON, "json", false, "output alerts as JSON")
	alertsCmd.AddCommand(alertsListCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlertsList(cmd *cobra.Command, args []string) error {
	if alertService == nil {
		return errAlertsNotConfigured
	}

	alerts, err := alertService.List(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}

	if alertsJSON {
		data, err := json.MarshalIndent(alerts, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal alerts: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(alerts) == 0 {
		cmd.Printf("No alerts for patient %s.\n", args[0])
		return nil
	}
	for _, a := range alerts {
		cmd.Printf("  %s  %s\n", a.Timestamp.Local().Format(time.DateTime), a.Message)
	}
	return nil
}
