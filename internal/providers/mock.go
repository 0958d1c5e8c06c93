package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// MockCompleter is a Completer for testing.
type MockCompleter struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailErr      error             // Error returned when failing; defaults to ErrUpstream
	FailOnCall   map[int]error     // Fail specific calls (1-based) with a given error
	ResponseText string
	ResponseFor  map[string]string // Per-prompt responses, keyed by user prompt

	// State
	requestCount atomic.Int64

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Complete invocation.
type MockCall struct {
	APIKey       string
	SystemPrompt string
	UserPrompt   string
	Model        string
}

// NewMockCompleter creates a new mock completer with sensible defaults.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{
		Latency:      time.Millisecond,
		ResponseText: "mock completion",
	}
}

// Name returns the provider identifier.
func (m *MockCompleter) Name() string {
	return MockName
}

// Complete returns the configured response, recording the call.
func (m *MockCompleter) Complete(ctx context.Context, apiKey, systemPrompt, userPrompt, model string) (string, error) {
	count := int(m.requestCount.Add(1))

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{
		APIKey:       apiKey,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Model:        model,
	})
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err, ok := m.FailOnCall[count]; ok {
		return "", err
	}
	if m.ShouldFail {
		if m.FailErr != nil {
			return "", m.FailErr
		}
		return "", fmt.Errorf("mock completer configured to fail: %w", ErrUpstream)
	}

	if resp, ok := m.ResponseFor[userPrompt]; ok {
		return resp, nil
	}
	return m.ResponseText, nil
}

// Calls returns a copy of the recorded invocations in order.
func (m *MockCompleter) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// RequestCount returns the number of requests made.
func (m *MockCompleter) RequestCount() int64 {
	return m.requestCount.Load()
}

// Reset clears the request counter and call log.
func (m *MockCompleter) Reset() {
	m.requestCount.Store(0)
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// Verify interface
var _ Completer = (*MockCompleter)(nil)
