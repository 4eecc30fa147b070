package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/postop/internal/connectors/profiles"
	"github.com/custodia-labs/postop/internal/logger"
)

var (
	ingestDir   string
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [PATIENT_ID FILE]",
	Short: "Index patient profiles",
	Long: `Indexes a patient profile (YAML or JSON) so chat turns can retrieve it.

  postop ingest p1 alice.yaml      index one file as patient p1
  postop ingest --dir profiles/    index every profile in a directory
  postop ingest --dir profiles/ --watch
                                   keep re-indexing files as they change

In a directory the patient ID is the file's patient_id field or, if absent,
the file name without extension. Re-ingesting a patient replaces their
previous documents.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if ingestDir != "" {
			return cobra.NoArgs(cmd, args)
		}
		if ingestWatch {
			return errors.New("--watch requires --dir")
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "directory of profile files")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "watch --dir and re-ingest changed profiles")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	if ingestDir == "" {
		entry, err := profiles.LoadFile(args[1])
		if err != nil {
			return err
		}
		entry.PatientID = args[0]
		return ingestEntry(cmd.Context(), cmd, entry)
	}

	if err := ingestDirectory(cmd, ingestDir); err != nil && !ingestWatch {
		return err
	}
	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s for profile changes (Ctrl+C to stop)...\n", ingestDir)
	watcher := profiles.NewWatcher(ingestDir, profiles.DefaultDebounce, func(ctx context.Context, entry profiles.Entry) error {
		return ingestEntry(ctx, cmd, entry)
	})
	return watcher.Run(cmd.Context())
}

func ingestDirectory(cmd *cobra.Command, dir string) error {
	entries, loadErrs, err := profiles.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, loadErr := range loadErrs {
		cmd.PrintErrf("skipped: %v\n", loadErr)
	}

	failed := len(loadErrs)
	for _, entry := range entries {
		if err := ingestEntry(cmd.Context(), cmd, entry); err != nil {
			cmd.PrintErrf("%v\n", err)
			failed++
		}
	}

	cmd.Printf("Ingested %d of %d profiles.\n", len(entries)+len(loadErrs)-failed, len(entries)+len(loadErrs))
	if failed > 0 {
		return fmt.Errorf("%d profiles failed", failed)
	}
	return nil
}

func ingestEntry(ctx context.Context, cmd *cobra.Command, entry profiles.Entry) error {
	docs, err := ingestService.Ingest(ctx, entry.PatientID, entry.Profile)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", entry.PatientID, err)
	}
	logger.Debug("ingested %s from %s", entry.PatientID, entry.Path)
	cmd.Printf("Ingested %s: %d documents\n", entry.PatientID, len(docs))
	return nil
}
