package domain

// Retrieval and model-boundary defaults.
const (
	DefaultTopK                 = 6
	DefaultLLMRequestsPerSecond = 2.0
)

// AIProvider names a backend for embeddings, generation or both.
type AIProvider string

// Supported providers.
const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderGemini    AIProvider = "gemini"
)

type providerInfo struct {
	label        string
	local        bool
	embedModel   string // empty when the provider has no embedding API
	llmModel     string
	menuPosition int
}

var providers = map[AIProvider]providerInfo{
	AIProviderGemini:    {label: "Google Gemini (cloud)", embedModel: "text-embedding-004", llmModel: "gemini-2.5-flash", menuPosition: 0},
	AIProviderOllama:    {label: "Ollama (local)", local: true, embedModel: "all-minilm", llmModel: "llama3.2", menuPosition: 1},
	AIProviderOpenAI:    {label: "OpenAI (cloud)", embedModel: "text-embedding-3-small", llmModel: "gpt-4o-mini", menuPosition: 2},
	AIProviderAnthropic: {label: "Anthropic (cloud)", llmModel: "claude-3-5-sonnet-latest", menuPosition: 3},
}

// knownDimensions lists vector sizes for models whose size is fixed.
var knownDimensions = map[string]int{
	"all-minilm":             384,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"text-embedding-004":     768,
	"gemini-embedding-001":   3072,
}

// IsValid reports whether p is a supported provider.
func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey is true for every cloud provider.
func (p AIProvider) RequiresAPIKey() bool {
	info, ok := providers[p]
	return ok && !info.local
}

// IsLocal reports whether the provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	return providers[p].local
}

// SupportsEmbeddings reports whether the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return providers[p].embedModel != ""
}

// String returns the provider name as stored in config.
func (p AIProvider) String() string {
	return string(p)
}

// Description is the label shown in settings output.
func (p AIProvider) Description() string {
	if info, ok := providers[p]; ok {
		return info.label
	}
	return "Unknown"
}

// EmbeddingSettings selects the model that embeds documents and queries.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string // Ollama or OpenAI-compatible servers
	APIKey   string
}

// IsConfigured reports whether an embedding service can be built from e.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.SupportsEmbeddings() && (e.APIKey != "" || !e.Provider.RequiresAPIKey())
}

// LLMSettings selects the model that triages chat turns.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// RequestsPerSecond caps model calls; zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured reports whether an LLM service can be built from l.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.IsValid() && (l.APIKey != "" || !l.Provider.RequiresAPIKey())
}

// RetrievalSettings controls patient-scoped search.
type RetrievalSettings struct {
	TopK int // at least 1
}

// IngestSettings controls how profiles reach the vector store.
type IngestSettings struct {
	// ReplaceExisting drops a patient's previous documents on re-ingestion.
	ReplaceExisting bool
}

// AppSettings is the full persisted configuration.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Ingest    IngestSettings
}

// DefaultAppSettings leaves both AI providers unset; `postop settings`
// configures them.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM:       LLMSettings{RequestsPerSecond: DefaultLLMRequestsPerSecond},
		Retrieval: RetrievalSettings{TopK: DefaultTopK},
		Ingest:    IngestSettings{ReplaceExisting: true},
	}
}

func sortedProviders(keep func(providerInfo) bool) []AIProvider {
	ordered := make([]AIProvider, len(providers))
	for p, info := range providers {
		ordered[info.menuPosition] = p
	}
	var out []AIProvider
	for _, p := range ordered {
		if keep(providers[p]) {
			out = append(out, p)
		}
	}
	return out
}

// AllEmbeddingProviders lists providers with an embedding API, in menu order.
func AllEmbeddingProviders() []AIProvider {
	return sortedProviders(func(i providerInfo) bool { return i.embedModel != "" })
}

// AllLLMProviders lists every provider, in menu order.
func AllLLMProviders() []AIProvider {
	return sortedProviders(func(providerInfo) bool { return true })
}

// DefaultEmbeddingModels maps each embedding provider to its default model.
func DefaultEmbeddingModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for p, info := range providers {
		if info.embedModel != "" {
			out[p] = info.embedModel
		}
	}
	return out
}

// DefaultLLMModels maps each provider to its default generation model.
func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string, len(providers))
	for p, info := range providers {
		out[p] = info.llmModel
	}
	return out
}

// EmbeddingDimensions returns a copy of the known model sizes.
func EmbeddingDimensions() map[string]int {
	out := make(map[string]int, len(knownDimensions))
	for k, v := range knownDimensions {
		out[k] = v
	}
	return out
}
