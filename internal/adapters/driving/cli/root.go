// Package cli provides the cobra command tree for the postop binary.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/postop/internal/core/ports/driving"
	"github.com/custodia-labs/postop/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	chatService      driving.ChatService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	alertService     driving.AlertService
	patientService   driving.PatientService
	settingsService  driving.SettingsService
)

// Global flags.
var (
	verbose   bool
	ephemeral bool
	dataDir   string
	configDir string
)

// Options are the global flag values handed to the Builder.
type Options struct {
	DataDir   string
	ConfigDir string
	Ephemeral bool
}

// Services holds the driving ports the commands use. Nil members leave
// the dependent commands reporting "service not configured".
type Services struct {
	Chat      driving.ChatService
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Alerts    driving.AlertService
	Patients  driving.PatientService
	Settings  driving.SettingsService
}

// Builder wires the services once global flags are parsed.
// The returned cleanup runs after the command finishes.
type Builder func(ctx context.Context, opts Options) (Services, func(), error)

var (
	builder Builder
	cleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "postop",
	Short: "Post-operative patient assistant",
	Long: `postop answers post-operative patients' questions from their own care
profile and triages each message:

  1  routine self-care guidance
  2  routine guidance plus a clinician follow-up
  3  urgent; the emergency contact is alerted

Profiles are indexed per patient and never mixed between patients.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&ephemeral, "ephemeral", false, "keep all state in memory for this run")
	flags.StringVar(&dataDir, "data-dir", "", "database directory (default ~/.postop/data)")
	flags.StringVar(&configDir, "config-dir", "", "config and prompt directory (default ~/.postop)")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices injects the driving ports directly.
func SetServices(s Services) {
	chatService = s.Chat
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	alertService = s.Alerts
	patientService = s.Patients
	settingsService = s.Settings
}

// SetBuilder registers the function that builds services from global flags.
func SetBuilder(b Builder) {
	builder = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// skipBuild lists commands that run without services.
var skipBuild = map[string]bool{
	"version":                       true,
	"help":                          true,
	cobra.ShellCompRequestCmd:       true,
	cobra.ShellCompNoDescRequestCmd: true,
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if builder == nil || skipBuild[cmd.Name()] {
		return nil
	}

	services, done, err := builder(cmd.Context(), Options{
		DataDir:   dataDir,
		ConfigDir: configDir,
		Ephemeral: ephemeral,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

var (
	errChatNotConfigured      = errors.New("chat service not configured")
	errIngestNotConfigured    = errors.New("ingest service not configured")
	errRetrievalNotConfigured = errors.New("retrieval service not configured")
	errAlertsNotConfigured    = errors.New("alert service not configured")
	errPatientsNotConfigured  = errors.New("patient service not configured")
	errSettingsNotConfigured  = errors.New("settings service not configured")
)
