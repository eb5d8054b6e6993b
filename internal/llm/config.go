package llm

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openai", "openrouter", "anthropic", "gemini", "mock"
	Provider string `yaml:"provider"`

	OpenAI     OpenAIConfig     `yaml:"openai"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds a single LLM call. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout"`

	// MockRespond answers requests when Provider is "mock".
	MockRespond func(Request) MockResponse `yaml:"-"`
}

// OpenAIConfig holds configuration for OpenAI and compatible endpoints.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o"
	BaseURL string `yaml:"base_url"` // Default: "https://api.openai.com/v1"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "openai/gpt-4o"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"

	// AppName and AppURL are sent as OpenRouter attribution headers.
	AppName string `yaml:"app_name"`
	AppURL  string `yaml:"app_url"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "claude-sonnet"
	BaseURL string `yaml:"base_url"` // Empty means the SDK default
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gemini-flash"
	BaseURL string `yaml:"base_url"` // Empty means the SDK default
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`

	// OnRetry is called before waiting to retry a failed attempt.
	OnRetry func(ctx context.Context, attempt int, err error, wait time.Duration) `yaml:"-"`
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// DefaultConfig returns a Config with sensible defaults. Retries are off;
// each step gets a single attempt unless Retry.MaxAttempts is raised.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o",
			BaseURL: defaultOpenAIBaseURL,
		},
		OpenRouter: OpenRouterConfig{
			Model:   "openai/gpt-4o",
			BaseURL: defaultOpenRouterBaseURL,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 120 * time.Second,
	}
}

// Validate checks that the selected provider is fully configured.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("OPENAI_MODEL is required for the openai provider")
		}
		if err := validateBaseURL("OPENAI_BASE_URL", c.OpenAI.BaseURL); err != nil {
			return err
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
		if c.OpenRouter.Model == "" {
			return fmt.Errorf("OPENROUTER_MODEL is required for the openrouter provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}

	if c.Retry.MaxAttempts > 1 && c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be >= 1, got %v", c.Retry.Multiplier)
	}
	return nil
}

// ModelID reports the configured model of the selected provider.
func (c Config) ModelID() string {
	switch c.Provider {
	case "openai":
		return c.OpenAI.Model
	case "openrouter":
		return c.OpenRouter.Model
	case "anthropic":
		return resolveModel(c.Anthropic.Model, anthropicModels)
	case "gemini":
		return resolveModel(c.Gemini.Model, geminiModels)
	default:
		return c.Provider
	}
}

func validateBaseURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
	}
	return nil
}
