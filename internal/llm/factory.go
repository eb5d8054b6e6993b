package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/examgen/internal/logger"
	"github.com/abhisek/examgen/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with
// timeout, logging and retry middleware. eventRepo may be nil.
func NewProvider(ctx context.Context, cfg Config, log *logger.Logger, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		m := NewMockProvider()
		m.Respond = cfg.MockRespond
		base = m
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if log == nil {
		log = logger.Nop()
	}
	retry := cfg.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = func(ctx context.Context, attempt int, err error, wait time.Duration) {
			log.Warn("retrying llm request",
				"run_id", RunIDFrom(ctx),
				"purpose", PurposeFrom(ctx),
				"attempt", attempt,
				"kind", Kind(err),
				"wait_ms", wait.Milliseconds(),
			)
		}
	}

	// caller → retry → logging → timeout → base
	timed := WithTimeout(base, cfg.Timeout)
	logged := WithLogging(timed, cfg.Provider, log, eventRepo)
	retried := WithRetry(logged, retry)

	return retried, nil
}
