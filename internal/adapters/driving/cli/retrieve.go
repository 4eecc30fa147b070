package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/postop/internal/core/domain"
)

var (
	retrieveK    int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve PATIENT_ID QUERY",
	Short: "Show the profile snippets a question retrieves",
	Long: `Runs the retrieval step of a chat turn on its own and prints the
patient's closest snippets with their distances (lower is closer).`,
	Args: cobra.ExactArgs(2),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "k", "k", 0, "number of snippets (0 = configured default)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output hits as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errRetrievalNotConfigured
	}

	hits, err := retrievalService.Retrieve(cmd.Context(), args[0], args[1], retrieveK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return outputRetrieveJSON(cmd, hits)
	}
	outputRetrieveTable(cmd, hits)
	return nil
}

func outputRetrieveJSON(cmd *cobra.Command, hits []domain.RetrievalHit) error {
	if hits == nil {
		hits = []domain.RetrievalHit{}
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal hits: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRetrieveTable(cmd *cobra.Command, hits []domain.RetrievalHit) {
	if len(hits) == 0 {
		cmd.Println("No documents found for this patient.")
		return
	}
	for i := range hits {
		cmd.Printf("  [%d] (%s) %.4f\n", i+1, hits[i].Kind, hits[i].Distance)
		cmd.Printf("      %s\n", hits[i].Text)
	}
}
