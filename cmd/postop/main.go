// Command postop is the post-operative patient assistant CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/postop/internal/adapters/driven/ai"
	"github.com/custodia-labs/postop/internal/adapters/driven/config/file"
	"github.com/custodia-labs/postop/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/postop/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/postop/internal/adapters/driving/cli"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/services"
	"github.com/custodia-labs/postop/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// envBindings maps config keys to the environment variables that can supply
// them when the config file leaves them empty.
//
//nolint:gosec // G101: variable names, not credentials.
var envBindings = map[string][]string{
	"llm.provider":       {"POSTOP_LLM_PROVIDER"},
	"llm.model":          {"POSTOP_LLM_MODEL"},
	"llm.api_key":        {"POSTOP_LLM_API_KEY", "GEMINI_API_KEY"},
	"embedding.provider": {"POSTOP_EMBEDDING_PROVIDER"},
	"embedding.model":    {"POSTOP_EMBEDDING_MODEL"},
	"embedding.api_key":  {"POSTOP_EMBEDDING_API_KEY", "GEMINI_API_KEY"},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBuilder(build)

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}

// stores groups the persistence ports behind either backend.
type stores struct {
	vectors  driven.VectorStore
	alerts   driven.AlertSink
	profiles driven.ProfileStore
	close    func()
}

// build wires config, storage, AI providers and services for one command.
func build(_ context.Context, opts cli.Options) (cli.Services, func(), error) {
	configStore, err := newConfigStore(opts)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("loading config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("reading settings: %w", err)
	}

	st, err := newStores(opts)
	if err != nil {
		return cli.Services{}, nil, err
	}

	aiServices := ai.Initialise(settings)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	promptStore, err := file.NewPromptStore(promptDir(opts))
	if err != nil {
		aiServices.Close()
		st.close()
		return cli.Services{}, nil, fmt.Errorf("opening prompts: %w", err)
	}

	ingestService := services.NewIngestService(aiServices.EmbeddingService, st.vectors, settings.Ingest.ReplaceExisting)
	ingestService.SetProfileStore(st.profiles)

	retrievalService := services.NewRetrievalService(aiServices.EmbeddingService, st.vectors, settings.Retrieval.TopK)

	chatService := services.NewChatService(retrievalService, aiServices.LLMService, st.alerts)
	chatService.SetPromptBuilder(services.NewPromptBuilder(promptStore))
	chatService.SetTopK(settings.Retrieval.TopK)

	svc := cli.Services{
		Chat:      chatService,
		Ingest:    ingestService,
		Retrieval: retrievalService,
		Alerts:    services.NewAlertService(st.alerts),
		Patients:  services.NewPatientService(st.profiles, st.vectors),
		Settings:  settingsService,
	}

	cleanup := func() {
		aiServices.Close()
		st.close()
	}
	return svc, cleanup, nil
}

func newConfigStore(opts cli.Options) (driven.ConfigStore, error) {
	if opts.Ephemeral {
		values := make(map[string]any)
		for key, vars := range envBindings {
			for _, name := range vars {
				if v := os.Getenv(name); v != "" {
					values[key] = v
					break
				}
			}
		}
		return memory.NewConfigStoreWith(values), nil
	}

	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	if applied := store.ApplyEnv(envBindings); len(applied) > 0 {
		logger.Debug("config from environment: %v", applied)
	}
	return store, nil
}

func newStores(opts cli.Options) (*stores, error) {
	if opts.Ephemeral {
		return &stores{
			vectors:  memory.NewVectorStore(),
			alerts:   memory.NewAlertSink(),
			profiles: memory.NewProfileStore(),
			close:    func() {},
		}, nil
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Debug("database: %s", store.Path())
	return &stores{
		vectors:  store.VectorStore(),
		alerts:   store.AlertSink(),
		profiles: store.ProfileStore(),
		close: func() {
			if err := store.Close(); err != nil {
				logger.Error("closing database: %v", err)
			}
		},
	}, nil
}

// promptDir keeps prompts beside the config file when --config-dir is set.
func promptDir(opts cli.Options) string {
	if opts.ConfigDir == "" {
		return ""
	}
	return filepath.Join(opts.ConfigDir, "prompts")
}
