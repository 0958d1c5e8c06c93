package providers

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func newQuietRegistry() *Registry {
	r := NewRegistry()
	r.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r
}

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := newQuietRegistry()
		mock := NewMockCompleter()

		r.Register("mock", mock, 5.0)

		c, err := r.Get("mock")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if c != mock {
			t.Error("got different completer than registered")
		}
		if r.Limiter("mock") == nil {
			t.Error("expected limiter for registered provider")
		}
	})

	t.Run("get nonexistent", func(t *testing.T) {
		r := newQuietRegistry()

		_, err := r.Get("nonexistent")
		if err == nil {
			t.Error("expected error for nonexistent provider")
		}
		if r.Limiter("nonexistent") != nil {
			t.Error("expected nil limiter for unknown provider")
		}
	})

	t.Run("list and has", func(t *testing.T) {
		r := newQuietRegistry()
		r.Register("a", NewMockCompleter(), 1.0)
		r.Register("b", NewMockCompleter(), 1.0)

		if got := r.List(); len(got) != 2 {
			t.Errorf("List() returned %d items, want 2", len(got))
		}
		if !r.Has("a") {
			t.Error("Has() = false for registered provider")
		}
		if r.Has("c") {
			t.Error("Has() = true for unregistered provider")
		}
	})

	t.Run("searcher requires catalog support", func(t *testing.T) {
		r := newQuietRegistry()
		r.Register("mock", NewMockCompleter(), 1.0)
		r.Register("openrouter", NewOpenRouterClient(OpenRouterConfig{}), 1.0)

		if _, err := r.Searcher("mock"); err == nil {
			t.Error("expected error for provider without a catalog")
		}
		if _, err := r.Searcher("openrouter"); err != nil {
			t.Errorf("Searcher(openrouter) error = %v", err)
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		r := newQuietRegistry()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.Register("concurrent", NewMockCompleter(), 1.0)
			}()
			go func() {
				defer wg.Done()
				r.Get("concurrent") // May fail, that's ok
			}()
		}
		wg.Wait()
	})
}

func TestRegistryReload(t *testing.T) {
	t.Run("configures enabled providers", func(t *testing.T) {
		r := newQuietRegistry()
		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"openrouter": {
					Type:      "openrouter",
					APIKey:    "server-key",
					RateLimit: 5.0,
					Enabled:   true,
				},
				"openai": {
					Type:    "openai",
					Enabled: false,
				},
			},
		})

		if !r.Has("openrouter") {
			t.Error("expected openrouter to be registered")
		}
		if r.Has("openai") {
			t.Error("disabled provider was registered")
		}
		if got := r.FallbackKey("openrouter"); got != "server-key" {
			t.Errorf("FallbackKey() = %q, want server-key", got)
		}
	})

	t.Run("removes stale providers", func(t *testing.T) {
		r := newQuietRegistry()
		r.Register("old", NewMockCompleter(), 1.0)

		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"openrouter": {Type: "openrouter", Enabled: true},
			},
		})

		if r.Has("old") {
			t.Error("expected stale provider to be unregistered")
		}
		if r.Limiter("old") != nil {
			t.Error("expected stale limiter to be removed")
		}
		if !r.Has("openrouter") {
			t.Error("expected openrouter to survive reload")
		}
	})

	t.Run("skips unknown types", func(t *testing.T) {
		r := newQuietRegistry()
		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"mystery": {Type: "anthropic-direct", Enabled: true},
			},
		})

		if r.Has("mystery") {
			t.Error("unknown provider type was registered")
		}
	})

	t.Run("timeout and base url pass through", func(t *testing.T) {
		r := newQuietRegistry()
		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"openrouter": {
					Type:    "openrouter",
					BaseURL: "http://localhost:9999",
					Timeout: 3 * time.Second,
					Enabled: true,
				},
			},
		})

		c, err := r.Get("openrouter")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		or, ok := c.(*OpenRouterClient)
		if !ok {
			t.Fatalf("expected *OpenRouterClient, got %T", c)
		}
		if or.baseURL != "http://localhost:9999" {
			t.Errorf("baseURL = %s", or.baseURL)
		}
		if or.client.Timeout != 3*time.Second {
			t.Errorf("timeout = %v, want 3s", or.client.Timeout)
		}
	})
}
