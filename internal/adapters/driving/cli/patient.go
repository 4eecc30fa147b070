package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/postop/internal/core/ports/driving"
)

var patientJSON bool

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Inspect stored patient profiles",
}

var patientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patient IDs",
	Args:  cobra.NoArgs,
	RunE:  runPatientList,
}

var patientShowCmd = &cobra.Command{
	Use:   "show PATIENT_ID",
	Short: "Show a patient's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatientShow,
}

func init() {
	patientShowCmd.Flags().BoolVar(&patientJSON, "json", false, "output profile as JSON")
	patientCmd.AddCommand(patientListCmd)
	patientCmd.AddCommand(patientShowCmd)
	rootCmd.AddCommand(patientCmd)
}

func runPatientList(cmd *cobra.Command, _ []string) error {
	if patientService == nil {
		return errPatientsNotConfigured
	}

	ids, err := patientService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list patients: %w", err)
	}

	if len(ids) == 0 {
		cmd.Println("No patients found. Run 'postop seed' or 'postop ingest' first.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}

func runPatientShow(cmd *cobra.Command, args []string) error {
	if patientService == nil {
		return errPatientsNotConfigured
	}

	details, err := patientService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if patientJSON {
		data, err := json.MarshalIndent(details, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal patient: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputPatient(cmd, details)
	return nil
}

func outputPatient(cmd *cobra.Command, d *driving.PatientDetails) {
	p := d.Profile
	cmd.Printf("Patient %s\n", d.PatientID)
	cmd.Printf("  Name: %s\n", p.Name)
	if p.Age > 0 {
		cmd.Printf("  Age: %d\n", p.Age)
	}
	cmd.Printf("  Procedure: %s\n", p.Procedure)
	if p.Surgeon != "" {
		cmd.Printf("  Surgeon: %s\n", p.Surgeon)
	}
	if !p.EmergencyContact.IsEmpty() {
		cmd.Printf("  Emergency contact: %s %s\n", p.EmergencyContact.Name, p.EmergencyContact.Phone)
	}
	if len(p.Allergies) > 0 {
		cmd.Printf("  Allergies: %s\n", strings.Join(p.Allergies, ", "))
	}
	if len(p.Medications) > 0 {
		cmd.Println("  Medications:")
		for _, m := range p.Medications {
			line := m.String()
			if m.DurationDays != nil {
				line += fmt.Sprintf(" for %d days", *m.DurationDays)
			}
			cmd.Printf("    - %s\n", line)
		}
	}
	if len(p.RedFlags) > 0 {
		cmd.Println("  Red flags:")
		for _, f := range p.RedFlags {
			cmd.Printf("    - %s\n", f)
		}
	}
	cmd.Printf("  Indexed documents: %d\n", d.DocumentCount)
}
