// Package ratelimit throttles calls to an LLM provider.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

var log = logger.For("llm-ratelimit")

// DefaultBackoff is applied after a 429 response.
const DefaultBackoff = 30 * time.Second

// LLMService wraps another LLMService.
// It uses a token bucket with a backoff window after 429 responses.
type LLMService struct {
	next    driven.LLMService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// Wrap returns next throttled to requestsPerSecond with a burst of one.
// A non-positive rate returns next unchanged.
func Wrap(next driven.LLMService, requestsPerSecond float64) driven.LLMService {
	if next == nil || requestsPerSecond <= 0 {
		return next
	}
	return New(next, requestsPerSecond, DefaultBackoff)
}

// New creates a rate-limited LLM service.
func New(next driven.LLMService, requestsPerSecond float64, backoff time.Duration) *LLMService {
	return &LLMService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		backoff: backoff,
	}
}

// Generate waits for a token, then delegates.
func (s *LLMService) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if err := s.Wait(ctx); err != nil {
		return "", err
	}

	out, err := s.next.Generate(ctx, systemPrompt, userMessage)
	if err != nil && isRateLimited(err) {
		s.recordRateLimit()
	}
	return out, err
}

// Wait blocks until a call can be made without exceeding the rate limit.
// It also respects any backoff window opened by a 429 response.
func (s *LLMService) Wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return s.limiter.Wait(ctx)
}

func (s *LLMService) recordRateLimit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryAt = time.Now().Add(s.backoff)
	log.Warn("%s: provider rate limited, backing off %s", s.next.ModelName(), s.backoff)
}

// isRateLimited matches the "(status 429)" marker the HTTP adapters put in their errors.
func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "status 429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// ModelName returns the wrapped model's name.
func (s *LLMService) ModelName() string {
	return s.next.ModelName()
}

// Ping delegates without consuming a token.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.next.Close()
}
