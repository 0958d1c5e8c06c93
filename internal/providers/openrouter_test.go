package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenRouterClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Verify request
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != "POST" {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}

			var req openRouterRequest
			json.NewDecoder(r.Body).Decode(&req)
			if len(req.Messages) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(req.Messages))
			}
			if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
				t.Errorf("message roles = %s, %s", req.Messages[0].Role, req.Messages[1].Role)
			}
			if req.Model != "openai/gpt-4o-mini" {
				t.Errorf("model = %s", req.Model)
			}

			resp := map[string]any{
				"id":    "test-id",
				"model": "openai/gpt-4o-mini",
				"choices": []map[string]any{
					{
						"message": map[string]any{
							"role":    "assistant",
							"content": "The answer is 4.",
						},
						"finish_reason": "stop",
					},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})

		out, err := client.Complete(context.Background(), "test-key", "You are a calculator.", "What is 2+2?", "openai/gpt-4o-mini")
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if out != "The answer is 4." {
			t.Errorf("Complete() = %q", out)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte(`{"error": {"message": "Invalid API key"}}`))
			}))

			client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})
			_, err := client.Complete(context.Background(), "bad-key", "sys", "user", "m")
			server.Close()

			if !errors.Is(err, ErrAuth) {
				t.Errorf("status %d: error = %v, want ErrAuth", status, err)
			}
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"message": "Rate limit exceeded"}}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "k", "sys", "user", "m")

		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("error = %v, want ErrRateLimited", err)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("internal error"))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "k", "sys", "user", "m")

		if !errors.Is(err, ErrUpstream) {
			t.Errorf("error = %v, want ErrUpstream", err)
		}
	})

	t.Run("error payload with 200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"error": {"code": 502, "message": "provider unavailable"}}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "k", "sys", "user", "m")

		if !errors.Is(err, ErrUpstream) {
			t.Errorf("error = %v, want ErrUpstream", err)
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "x", "model": "m", "choices": []}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "k", "sys", "user", "m")

		if !errors.Is(err, ErrUpstream) {
			t.Errorf("error = %v, want ErrUpstream", err)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: server.URL})

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := client.Complete(ctx, "k", "sys", "user", "m")
		if err == nil {
			t.Error("expected error from cancelled context")
		}
	})
}

func TestOpenRouterClient_SearchModels(t *testing.T) {
	t.Run("catalog parse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "llama" {
				t.Errorf("query = %q, want llama", got)
			}
			resp := map[string]any{
				"data": map[string]any{
					"models": []map[string]any{
						{
							"short_name":  "Llama 3.1 8B Instruct",
							"author":      "meta-llama",
							"description": "Fast open model",
							"permaslug":   "meta-llama/llama-3.1-8b-instruct",
							"endpoint":    map[string]any{"variant": "free"},
						},
						{
							"short_name":  "Llama Guard",
							"author":      "meta-llama",
							"description": "Moderation model",
							"permaslug":   "meta-llama/llama-guard",
							"endpoint":    map[string]any{"variant": "standard"},
						},
						{
							"short_name": "Unrouted Llama",
							"author":     "someone",
							"permaslug":  "someone/unrouted-llama",
						},
					},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{CatalogURL: server.URL})

		models, err := client.SearchModels(context.Background(), "llama")
		if err != nil {
			t.Fatalf("SearchModels() error = %v", err)
		}
		if len(models) != 3 {
			t.Fatalf("expected 3 models, got %d", len(models))
		}
		if models[0].Author != "Meta-llama" {
			t.Errorf("Author = %q, want capitalized", models[0].Author)
		}
		if !models[0].IsFree {
			t.Error("expected free variant to be flagged")
		}
		if models[1].IsFree {
			t.Error("standard variant flagged as free")
		}
		if models[2].IsFree {
			t.Error("model without endpoint flagged as free")
		}
		if models[0].Slug != "meta-llama/llama-3.1-8b-instruct" {
			t.Errorf("Slug = %q", models[0].Slug)
		}
	})

	t.Run("catalog error propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{CatalogURL: server.URL})
		_, err := client.SearchModels(context.Background(), "llama")
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestOpenRouterClient_Config(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		client := NewOpenRouterClient(OpenRouterConfig{})

		if client.Name() != OpenRouterName {
			t.Errorf("Name() = %s, want %s", client.Name(), OpenRouterName)
		}
		if client.baseURL != OpenRouterBaseURL {
			t.Errorf("baseURL = %s, want %s", client.baseURL, OpenRouterBaseURL)
		}
		if client.catalogURL != OpenRouterCatalogURL {
			t.Errorf("catalogURL = %s, want %s", client.catalogURL, OpenRouterCatalogURL)
		}
		if client.RequestsPerSecond() != 10.0 {
			t.Errorf("RequestsPerSecond() = %f, want 10.0", client.RequestsPerSecond())
		}
	})

	t.Run("overrides", func(t *testing.T) {
		client := NewOpenRouterClient(OpenRouterConfig{
			RPS:     50.0,
			Timeout: 2 * time.Second,
		})

		if client.RequestsPerSecond() != 50.0 {
			t.Errorf("RequestsPerSecond() = %f, want 50.0", client.RequestsPerSecond())
		}
		if client.client.Timeout != 2*time.Second {
			t.Errorf("timeout = %v, want 2s", client.client.Timeout)
		}
	})
}
