package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8991 {
		t.Errorf("default port = %d, want 8991", cfg.Server.Port)
	}
	if cfg.Store.Path != "promptdeck.db" {
		t.Errorf("default store path = %s", cfg.Store.Path)
	}
	or, ok := cfg.GetProvider("openrouter")
	if !ok {
		t.Fatal("expected openrouter provider in defaults")
	}
	if or.APIKey != "${OPENROUTER_API_KEY}" {
		t.Error("expected openrouter API key placeholder")
	}
	if !or.Enabled {
		t.Error("expected openrouter enabled by default")
	}
	if cfg.Defaults.Provider != "openrouter" {
		t.Errorf("default provider = %s", cfg.Defaults.Provider)
	}

	enabled := cfg.EnabledProviders()
	if _, ok := enabled["openai"]; ok {
		t.Error("openai should be disabled by default")
	}
	if _, ok := enabled["openrouter"]; !ok {
		t.Error("openrouter missing from enabled providers")
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host = %s", cfg.Server.Host)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestToProviderRegistryConfig(t *testing.T) {
	os.Setenv("TEST_OR_KEY", "or-key-123")
	defer os.Unsetenv("TEST_OR_KEY")

	cfg := &Config{
		Providers: map[string]ProviderCfg{
			"openrouter": {
				Type:      "openrouter",
				APIKey:    "${TEST_OR_KEY}",
				RateLimit: 7.5,
				TimeoutS:  30,
				Enabled:   true,
			},
			"openai": {
				Type:    "openai",
				APIKey:  "literal-key",
				Enabled: false,
			},
		},
	}

	rc := cfg.ToProviderRegistryConfig()

	or, ok := rc.Providers["openrouter"]
	if !ok {
		t.Fatal("openrouter missing from registry config")
	}
	if or.APIKey != "or-key-123" {
		t.Errorf("APIKey = %q, want resolved env value", or.APIKey)
	}
	if or.RateLimit != 7.5 {
		t.Errorf("RateLimit = %f", or.RateLimit)
	}
	if or.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", or.Timeout)
	}

	oa, ok := rc.Providers["openai"]
	if !ok {
		t.Fatal("openai missing from registry config")
	}
	if oa.Enabled {
		t.Error("expected openai to stay disabled")
	}
	if oa.APIKey != "literal-key" {
		t.Errorf("APIKey = %q, want literal passthrough", oa.APIKey)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
server:
  host: "0.0.0.0"
  port: 9000
store:
  path: "/tmp/test.db"
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Server.Port != 9000 {
			t.Errorf("port = %d, want 9000", cfg.Server.Port)
		}
		if cfg.Server.Host != "0.0.0.0" {
			t.Errorf("host = %s", cfg.Server.Host)
		}
		if cfg.Store.Path != "/tmp/test.db" {
			t.Errorf("store path = %s", cfg.Store.Path)
		}
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		mgr, err := NewManager("")
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Defaults.Model == "" {
			t.Error("expected default model to be set")
		}
	})
}

func TestWriteDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Promptdeck configuration") {
		t.Error("expected header comment")
	}
	// Env var placeholders must survive the round trip unexpanded.
	if !strings.Contains(string(data), "${OPENROUTER_API_KEY}") {
		t.Error("expected API key placeholder in written config")
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if got := mgr.Get().Server.Port; got != 8991 {
		t.Errorf("port = %d, want 8991", got)
	}
}
