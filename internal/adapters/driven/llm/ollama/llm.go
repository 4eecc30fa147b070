// Package ollama generates triage replies with a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"time"

	"github.com/custodia-labs/postop/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second

	defaultTemperature = 0.2
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	BaseURL string // default DefaultBaseURL
	Model   string // default DefaultLLMModel
	Timeout time.Duration
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	api     *httpjson.Client
	baseURL string
	model   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// errorMessage reads Ollama's flat {"error": "..."} bodies.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api:     httpjson.New("ollama", cfg.BaseURL, cfg.Timeout, nil, errorMessage),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Generate runs a non-streaming /api/chat call. Ollama's JSON mode keeps
// small local models from wrapping the triage object in prose.
func (s *LLMService) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := chatRequest{
		Model:   s.model,
		Stream:  false,
		Format:  "json",
		Options: &options{Temperature: defaultTemperature},
	}
	if systemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: userMessage})

	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks /api/tags, which answers without loading a model.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
