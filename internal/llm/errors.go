package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrAuth indicates the provider rejected the credentials (401/403).
type ErrAuth struct {
	Err error
}

func (e *ErrAuth) Error() string {
	return fmt.Sprintf("LLM authentication failed: %v", e.Err)
}

func (e *ErrAuth) Unwrap() error { return e.Err }

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrSchema indicates the LLM returned content that is not JSON or does
// not conform to the requested schema.
type ErrSchema struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrSchema) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrSchema) Unwrap() error { return e.Err }

// ErrTransport indicates the provider is down, unreachable, or timed out.
type ErrTransport struct {
	Err error
}

func (e *ErrTransport) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM transport error: %v", e.Err)
	}
	return "LLM transport error"
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// Error kinds reported by Kind.
const (
	KindAuth      = "auth"
	KindRateLimit = "rate_limit"
	KindSchema    = "schema"
	KindTransport = "transport"
	KindMaxTokens = "max_tokens"
	KindCanceled  = "canceled"
	KindUnknown   = "unknown"
)

// Kind classifies err into one of the Kind* labels.
func Kind(err error) string {
	var (
		auth   *ErrAuth
		rl     *ErrRateLimit
		schema *ErrSchema
		tr     *ErrTransport
		maxTok *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &auth):
		return KindAuth
	case errors.As(err, &rl):
		return KindRateLimit
	case errors.As(err, &schema):
		return KindSchema
	case errors.As(err, &maxTok):
		return KindMaxTokens
	case errors.As(err, &tr), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	default:
		return KindUnknown
	}
}

// mapHTTPStatus converts a provider API status code into a typed error.
func mapHTTPStatus(status int, err error) error {
	switch {
	case status == 401 || status == 403:
		return &ErrAuth{Err: err}
	case status == 429:
		return &ErrRateLimit{Err: err}
	default:
		return &ErrTransport{Err: err}
	}
}
