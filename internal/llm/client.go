// Package llm implements the external classifier oracle on top of
// hosted LLM APIs. The oracle is advisory: every caller must treat a
// failure as a degradation to the "other" action, never as fatal.
package llm

import (
	"context"
	"time"
)

// Client is the raw completion transport shared by all providers.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds configuration for the oracle.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	Temperature float64
	MaxTokens   int
}
