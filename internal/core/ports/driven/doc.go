// Package driven holds the secondary ports: everything the core services
// call out to. Adapters under internal/adapters/driven implement them.
//
// A chat turn needs an EmbeddingService and a VectorStore to ground the
// reply, an LLMService to triage it and an AlertSink to record urgent turns.
// ConfigStore backs the settings service.
//
// ProfileStore and PromptStore may be nil. Without a ProfileStore the
// ingested profile is embedded but not kept; without a PromptStore the
// built-in prompts are used.
//
// This package imports domain and nothing else from internal/.
package driven
