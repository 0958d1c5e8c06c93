package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestClientWaitForReady(t *testing.T) {
	t.Run("retries until ready", func(t *testing.T) {
		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/ready" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"degraded","store":"not_initialized"}`))
				return
			}
			w.Write([]byte(`{"status":"ok","store":"ok"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		if err := client.WaitForReady(context.Background(), 5); err != nil {
			t.Fatalf("WaitForReady() error = %v", err)
		}
		if got := hits.Load(); got != 3 {
			t.Errorf("server hit %d times, want 3", got)
		}
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		err := client.WaitForReady(context.Background(), 2)
		if err == nil {
			t.Fatal("expected error after exhausted attempts")
		}
		if !strings.Contains(err.Error(), "503") {
			t.Errorf("error = %v, want the last status included", err)
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(server.URL)
		if err := client.WaitForReady(ctx, 10); err == nil {
			t.Fatal("expected error from cancelled context")
		}
	})
}
