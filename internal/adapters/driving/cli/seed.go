package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/postop/internal/connectors/profiles"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Index the demo patients p1 to p4",
	Long: `Indexes four built-in demo patients so chat can be tried straight away:

  p1  Alice Lee     laparoscopic cholecystectomy
  p2  Bob Singh     total knee replacement
  p3  Carol Wu      cesarean section
  p4  Daniel Ortiz  coronary artery bypass graft`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	entries, err := profiles.Seed()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		docs, err := ingestService.Ingest(cmd.Context(), entry.PatientID, entry.Profile)
		if err != nil {
			return fmt.Errorf("seed %s: %w", entry.PatientID, err)
		}
		cmd.Printf("Seeded %s (%s): %d documents\n", entry.PatientID, entry.Profile.Name, len(docs))
	}
	return nil
}
