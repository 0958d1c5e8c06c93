// Package providers contains adapters to external model-serving APIs.
package providers

import (
	"context"
	"errors"
)

// Gateway error taxonomy. Callers distinguish failure classes with errors.Is;
// none of these are retried by the gateway itself.
var (
	// ErrAuth indicates the API key was rejected upstream.
	ErrAuth = errors.New("provider rejected credentials")

	// ErrRateLimited indicates the provider signalled throttling.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrUpstream covers any other non-success response or network failure.
	ErrUpstream = errors.New("upstream provider error")
)

// Completer sends a single chat-style completion request using a
// caller-supplied key. Implementations perform no retries; retry policy, if
// any, belongs to the caller.
type Completer interface {
	// Complete sends exactly two messages (system, then user) and returns
	// the first choice's text content.
	Complete(ctx context.Context, apiKey, systemPrompt, userPrompt, model string) (string, error)

	// Name returns the provider identifier (e.g. "openrouter").
	Name() string
}

// ModelInfo describes one entry from a provider's model catalog.
type ModelInfo struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	IsFree      bool   `json:"is_free"`
}

// ModelSearcher queries a provider's model catalog. Best-effort: upstream
// failures propagate to the caller unmodified.
type ModelSearcher interface {
	SearchModels(ctx context.Context, query string) ([]ModelInfo, error)
}
