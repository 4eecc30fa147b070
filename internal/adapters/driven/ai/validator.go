package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultPingTimeout bounds a single provider connectivity check.
const DefaultPingTimeout = 5 * time.Second

// pinger is the part of both AI services the validator needs.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ConfigValidator builds a provider from settings and pings it once.
// Unconfigured settings are not an error: there is nothing to check yet.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator using DefaultPingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultPingTimeout}
}

// WithTimeout returns a copy of the validator with a different ping timeout.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	if d <= 0 {
		d = DefaultPingTimeout
	}
	return &ConfigValidator{timeout: d}
}

// ValidateEmbedding checks the embedding provider is reachable.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if err := v.ping(svc); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, config.Provider, err)
	}
	return nil
}

// ValidateLLM checks the LLM provider is reachable.
// The rate limiter is not involved; this is one direct call.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if err := v.ping(svc); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrLLMUnavailable, config.Provider, err)
	}
	return nil
}

func (v *ConfigValidator) ping(svc pinger) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
