package providers

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry holds the configured completion providers. It supports
// config-driven instantiation, hot-reload, and thread-safe access.
// Each provider carries its own token-bucket rate limiter.
type Registry struct {
	mu           sync.RWMutex
	completers   map[string]Completer
	limiters     map[string]*RateLimiter
	fallbackKeys map[string]string
	logger       *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		completers:   make(map[string]Completer),
		limiters:     make(map[string]*RateLimiter),
		fallbackKeys: make(map[string]string),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds a completer by name with the given RPS budget.
func (r *Registry) Register(name string, c Completer, rps float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completers[name] = c
	r.limiters[name] = NewRateLimiter(rps)
	if r.logger != nil {
		r.logger.Info("registered completion provider", "name", name)
	}
}

// Get returns a completer by name.
func (r *Registry) Get(name string) (Completer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.completers[name]
	if !ok {
		return nil, fmt.Errorf("completion provider not found: %s", name)
	}
	return c, nil
}

// FallbackKey returns the server-level API key configured for a
// provider, or empty when callers must supply their own.
func (r *Registry) FallbackKey(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallbackKeys[name]
}

// Limiter returns the rate limiter for a provider, or nil if unknown.
func (r *Registry) Limiter(name string) *RateLimiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limiters[name]
}

// Searcher returns the provider's model catalog client if it has one.
func (r *Registry) Searcher(name string) (ModelSearcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.completers[name]
	if !ok {
		return nil, fmt.Errorf("completion provider not found: %s", name)
	}
	s, ok := c.(ModelSearcher)
	if !ok {
		return nil, fmt.Errorf("provider %s has no model catalog", name)
	}
	return s, nil
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.completers))
	for name := range r.completers {
		names = append(names, name)
	}
	return names
}

// Has checks if a provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.completers[name]
	return ok
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	Providers map[string]ProviderConfig
}

// ProviderConfig matches config.ProviderCfg.
type ProviderConfig struct {
	Type      string  // "openrouter", "openai"
	BaseURL   string  // Optional override (tests, proxies)
	APIKey    string  // Optional server-level fallback key
	RateLimit float64 // Requests per second
	Timeout   time.Duration
	Enabled   bool
}

// Reload updates the registry from new configuration. Providers no longer
// configured are unregistered; configured ones are rebuilt.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)
	for name, provCfg := range cfg.Providers {
		if !provCfg.Enabled {
			continue
		}
		c := createCompleter(provCfg)
		if c == nil {
			if r.logger != nil {
				r.logger.Warn("unknown provider type", "name", name, "type", provCfg.Type)
			}
			continue
		}
		want[name] = true
		r.completers[name] = c
		r.limiters[name] = NewRateLimiter(provCfg.RateLimit)
		r.fallbackKeys[name] = provCfg.APIKey
		if r.logger != nil {
			r.logger.Info("configured completion provider", "name", name, "type", provCfg.Type)
		}
	}

	for name := range r.completers {
		if !want[name] {
			delete(r.completers, name)
			delete(r.limiters, name)
			delete(r.fallbackKeys, name)
			if r.logger != nil {
				r.logger.Info("unregistered completion provider", "name", name)
			}
		}
	}
}

func createCompleter(cfg ProviderConfig) Completer {
	switch cfg.Type {
	case "openrouter":
		return NewOpenRouterClient(OpenRouterConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			RPS:     cfg.RateLimit,
		})
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			RPS:     cfg.RateLimit,
		})
	default:
		return nil
	}
}
