package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/retry"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Config selects and configures one backend.
type Config struct {
	// Provider is "anthropic", "openai", "gemini", "openrouter" or "mock".
	Provider string

	Anthropic  config.ProviderConfig
	OpenAI     config.ProviderConfig
	Gemini     config.ProviderConfig
	OpenRouter config.ProviderConfig
	Retry      retry.Policy

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// DefaultConfig returns the models used when none are configured.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  config.ProviderConfig{Model: "claude-haiku"},
		OpenAI:     config.ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     config.ProviderConfig{Model: "gemini-flash"},
		OpenRouter: config.ProviderConfig{Model: "google/gemini-2.0-flash-exp", BaseURL: defaultOpenRouterBaseURL},
		Retry: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// FromConfig overlays the application's llm section on the defaults.
// Empty fields keep their default.
func FromConfig(c config.LLMConfig) Config {
	cfg := DefaultConfig()
	cfg.Provider = c.Provider
	overlay(&cfg.Anthropic, c.Anthropic)
	overlay(&cfg.OpenAI, c.OpenAI)
	overlay(&cfg.Gemini, c.Gemini)
	overlay(&cfg.OpenRouter, c.OpenRouter)
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	return cfg
}

func overlay(dst *config.ProviderConfig, src config.ProviderConfig) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
}

// DiscoverConfig probes the vendors' standard API key variables
// (Gemini, OpenAI, Anthropic, OpenRouter) and configures the first found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		env, provider string
		dst           *config.ProviderConfig
	}{
		{"GEMINI_API_KEY", "gemini", &cfg.Gemini},
		{"OPENAI_API_KEY", "openai", &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", "anthropic", &cfg.Anthropic},
		{"OPENROUTER_API_KEY", "openrouter", &cfg.OpenRouter},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			p.dst.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("KINDERPATH_LLM_%s_API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
