package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterTitle   = "examgen"
)

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible API. Requests
// carry OpenRouter's app attribution headers.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	return &OpenRouterProvider{
		OpenAIProvider: newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model, openRouterHeaders(cfg)),
	}, nil
}

func openRouterHeaders(cfg OpenRouterConfig) http.Header {
	h := http.Header{}
	title := cfg.AppName
	if title == "" {
		title = defaultOpenRouterTitle
	}
	h.Set("X-Title", title)
	if cfg.AppURL != "" {
		h.Set("HTTP-Referer", cfg.AppURL)
	}
	return h
}
