// Package openai generates triage replies with the OpenAI chat completions
// API or any server that speaks it.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/postop/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second

	// Triage replies are one short JSON object.
	defaultMaxTokens   = 512
	defaultTemperature = 0.2
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	APIKey  string // required
	BaseURL string // default DefaultBaseURL; Azure and compatible APIs work too
	Model   string // default DefaultLLMModel
	Timeout time.Duration
}

// LLMService provides LLM operations using OpenAI API.
type LLMService struct {
	api     *httpjson.Client
	baseURL string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// errorMessage reads {"error": {"message": ...}} bodies.
func errorMessage(body []byte) string {
	var e struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error == nil {
		return ""
	}
	return e.Error.Message
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	headers := map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	return &LLMService{
		api:     httpjson.New("openai", cfg.BaseURL, cfg.Timeout, headers, errorMessage),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}, nil
}

// Generate sends the system prompt and the patient's message as one chat completion.
func (s *LLMService) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := chatCompletionRequest{
		Model:       s.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
	if systemPrompt != "" {
		req.Messages = append(req.Messages, message{Role: "system", Content: systemPrompt})
	}
	req.Messages = append(req.Messages, message{Role: "user", Content: userMessage})

	var resp chatCompletionResponse
	if err := s.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
