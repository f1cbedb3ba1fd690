// Package config loads runtime configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process configuration. Provider API keys are read by the
// vendor SDKs themselves; they are surfaced here only so startup can fail
// fast with a clear message when the selected provider has no key.
type Config struct {
	// Provider selects the model backend: "openai", "anthropic" or "mock".
	Provider string `env:"INBOXGATE_PROVIDER" envDefault:"openai"`
	// Model optionally overrides the provider's default model id.
	Model string `env:"INBOXGATE_MODEL"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"INBOXGATE_LOG_LEVEL" envDefault:"info"`
	// LogFormat is "text" or "json".
	LogFormat string `env:"INBOXGATE_LOG_FORMAT" envDefault:"text"`
	// MaxTurns bounds the number of model steps per run.
	MaxTurns int `env:"INBOXGATE_MAX_TURNS" envDefault:"12"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	TavilyAPIKey    string `env:"TAVILY_API_KEY"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; a missing file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("provider %q selected but OPENAI_API_KEY is not set", c.Provider)
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("provider %q selected but ANTHROPIC_API_KEY is not set", c.Provider)
		}
	case "mock":
		// no key required
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("INBOXGATE_MAX_TURNS must be positive, got %d", c.MaxTurns)
	}
	return nil
}
