// Package analyze asks a language model to summarise and classify section
// changes found by the diff engine.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Providers accepted in Config.Provider.
const (
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// ErrDisabled is returned by NewBackend when analysis is switched off.
var ErrDisabled = errors.New("text analysis is disabled")

// Config is everything the analysis collaborator needs.
type Config struct {
	Provider    string
	Endpoint    string
	Model       string
	APIKey      string
	BatchSize   int // Modified sections per batch prompt
	WorkerCount int // Concurrent backend calls
	Timeout     time.Duration
	MaxRetries  int
}

// Backend generates a completion for a prompt.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultEndpoint returns the base URL used when none is configured.
func DefaultEndpoint(provider string) string {
	if provider == ProviderAnthropic {
		return "https://api.anthropic.com"
	}
	return "http://localhost:11434"
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return "claude-sonnet-4-5-20250929"
	}
	return "tinyllama"
}

// NewBackend builds the client for cfg.Provider.
func NewBackend(cfg Config) (Backend, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(cfg.Endpoint, cfg.Model, cfg.Timeout), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.Timeout), nil
	case ProviderNone:
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Provider)
	}
}
