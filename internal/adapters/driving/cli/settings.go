package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/postop/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers and retrieval options.

Chat turns need both an embedding provider (to retrieve the patient's
profile) and an LLM provider (to answer). Without an LLM, turns fall back
to keyword triage of the message.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and retrieve profile snippets.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that answers and triages patient messages.`,
	RunE:  runSettingsLLM,
}

var (
	settingsTopK    int
	settingsLLMRate float64
)

var settingsRetrievalCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Configure retrieval and model rate limit",
	Long: `Set how many profile snippets a chat turn retrieves and how many LLM
calls per second are allowed (0 disables throttling).

Without flags the values are prompted for interactively.`,
	RunE: runSettingsRetrieval,
}

func init() {
	settingsRetrievalCmd.Flags().IntVar(&settingsTopK, "top-k", 0, "snippets retrieved per turn")
	settingsRetrievalCmd.Flags().Float64Var(&settingsLLMRate, "llm-rate", 0, "maximum LLM calls per second")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsRetrievalCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	e := settings.Embedding
	printProvider(cmd, "Embedding", e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured())

	l := settings.LLM
	printProvider(cmd, "LLM", l.Provider, l.Model, l.BaseURL, l.APIKey, l.IsConfigured(), func() {
		if l.RequestsPerSecond > 0 {
			cmd.Printf("  Rate limit: %g calls/s\n", l.RequestsPerSecond)
		} else {
			cmd.Println("  Rate limit: off")
		}
	})

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top-K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Replace on re-ingest: %t\n", settings.Ingest.ReplaceExisting)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

// printProvider writes one provider section; extra lines go before Status.
func printProvider(cmd *cobra.Command, label string, p domain.AIProvider, model, baseURL, apiKey string, ok bool, extra ...func()) {
	cmd.Printf("[%s]\n", label)
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if p.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayAPIKey(apiKey))
	}
	for _, f := range extra {
		f()
	}
	cmd.Printf("  Status: %s\n", configuredStatus(ok))
	cmd.Println()
}

func runSettingsRetrieval(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	flags := cmd.Flags()
	if !flags.Changed("top-k") && !flags.Changed("llm-rate") {
		return promptRetrieval(cmd, bufio.NewReader(cmd.InOrStdin()))
	}

	if flags.Changed("top-k") {
		if err := settingsService.SetTopK(settingsTopK); err != nil {
			return fmt.Errorf("failed to set top-k: %w", err)
		}
		cmd.Printf("Top-K set to: %d\n", settingsTopK)
	}
	if flags.Changed("llm-rate") {
		if err := settingsService.SetLLMRateLimit(settingsLLMRate); err != nil {
			return fmt.Errorf("failed to set LLM rate limit: %w", err)
		}
		cmd.Printf("LLM rate limit set to: %g calls/s\n", settingsLLMRate)
	}
	return nil
}

func promptRetrieval(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Snippets per turn [%d]: ", settings.Retrieval.TopK)
	if input := readLine(reader); input != "" {
		k, err := strconv.Atoi(input)
		if err != nil {
			return fmt.Errorf("invalid top-k %q", input)
		}
		if err := settingsService.SetTopK(k); err != nil {
			return fmt.Errorf("failed to set top-k: %w", err)
		}
	}

	cmd.Printf("LLM calls per second, 0 for no limit [%g]: ", settings.LLM.RequestsPerSecond)
	if input := readLine(reader); input != "" {
		rps, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return fmt.Errorf("invalid rate %q", input)
		}
		if err := settingsService.SetLLMRateLimit(rps); err != nil {
			return fmt.Errorf("failed to set LLM rate limit: %w", err)
		}
	}

	cmd.Println("Retrieval settings saved.")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), embeddingRole())
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), llmRole())
}

// providerRole describes one of the two AI roles a provider can fill.
type providerRole struct {
	label     string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	validate  func() error
}

func embeddingRole() providerRole {
	return providerRole{
		label:     "Embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
}

func llmRole() providerRole {
	return providerRole{
		label:     "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, role providerRole) error {
	cmd.Printf("Select %s Provider\n", role.label)
	for i, p := range role.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := role.providers[parseChoice(readLine(reader), len(role.providers), 1)-1]

	defaultModel := role.defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := role.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", role.label, err)
	}

	// Ping the provider so a bad key or URL shows up now, not mid-chat.
	cmd.Print("Validating configuration... ")
	if err := role.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", role.label, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n", role.label, selected.Description(), model)
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

// displayAPIKey shows the first and last four characters of long keys.
func displayAPIKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "..." + key[len(key)-4:]
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
