// Package httpjson is the small JSON-over-HTTP client shared by the
// provider adapters that talk to REST APIs directly.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is quoted in errors.
const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
}

// ErrorMessage extracts a provider's error text from a response body.
// It returns "" when the body carries no recognisable error.
type ErrorMessage func(body []byte) string

// Client sends JSON requests to one provider.
type Client struct {
	provider string
	baseURL  string
	headers  map[string]string
	http     *http.Client
	errMsg   ErrorMessage
}

// New creates a client. provider prefixes every error.
func New(provider, baseURL string, timeout time.Duration, headers map[string]string, errMsg ErrorMessage) *Client {
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		headers:  headers,
		http:     &http.Client{Timeout: timeout},
		errMsg:   errMsg,
	}
}

// Post sends in as JSON and decodes the response into out.
// A 200 response whose body still reports an error is treated as a failure.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Get issues a GET and discards the body. Used for pings.
func (c *Client) Get(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodGet, path, http.NoBody)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.provider, err)
	}

	msg := ""
	if c.errMsg != nil {
		msg = c.errMsg(raw)
	}
	if resp.StatusCode/100 != 2 {
		if msg == "" {
			msg = truncate(strings.TrimSpace(string(raw)))
		}
		return nil, &StatusError{Provider: c.provider, Status: resp.StatusCode, Message: msg}
	}
	if msg != "" {
		return nil, &StatusError{Provider: c.provider, Status: resp.StatusCode, Message: msg}
	}
	return raw, nil
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
