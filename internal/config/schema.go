package config

// Config holds promptdeck configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server    ServerCfg              `mapstructure:"server" yaml:"server"`
	Store     StoreCfg               `mapstructure:"store" yaml:"store"`
	Providers map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Defaults  DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// StoreCfg configures the SQLite database.
type StoreCfg struct {
	Path string `mapstructure:"path" yaml:"path"` // Database file; ":memory:" for ephemeral
}

// ProviderCfg configures a completion provider.
type ProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai"
	BaseURL   string  `mapstructure:"base_url" yaml:"base_url"`     // Optional endpoint override
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // Fallback key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	TimeoutS  int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections.
type DefaultsCfg struct {
	Provider string `mapstructure:"provider" yaml:"provider"` // Default completion provider
	Model    string `mapstructure:"model" yaml:"model"`       // Default model slug
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8991,
		},
		Store: StoreCfg{
			Path: "promptdeck.db",
		},
		Providers: map[string]ProviderCfg{
			"openrouter": {
				Type:      "openrouter",
				APIKey:    "${OPENROUTER_API_KEY}",
				RateLimit: 5.0,
				TimeoutS:  120,
				Enabled:   true,
			},
			"openai": {
				Type:      "openai",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 5.0,
				TimeoutS:  120,
				Enabled:   false,
			},
		},
		Defaults: DefaultsCfg{
			Provider: "openrouter",
			Model:    "openai/gpt-4o-mini",
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// EnabledProviders returns all enabled providers.
func (c *Config) EnabledProviders() map[string]ProviderCfg {
	result := make(map[string]ProviderCfg)
	for name, cfg := range c.Providers {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
