package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-sonnet",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicReply(w http.ResponseWriter, stop string, texts ...string) {
	blocks := make([]map[string]any, len(texts))
	for i, text := range texts {
		blocks[i] = map[string]any{"type": "text", "text": text}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     blocks,
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": stop,
		"usage": map[string]any{
			"input_tokens":  50,
			"output_tokens": 30,
		},
	})
}

func anthropicError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	})
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	var body map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		anthropicReply(w, "end_turn", `{"question_text":"What is 2+3?","points":1}`)
	})

	resp, err := p.Generate(context.Background(), Request{
		System:      "You are an experienced exam author.",
		Messages:    UserMessage("Write one question."),
		Schema:      questionSchema(),
		MaxTokens:   256,
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 80 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}

	if body["model"] != "claude-sonnet-4-5-20250929" {
		t.Errorf("friendly model name not resolved: %v", body["model"])
	}
	if body["temperature"] != 0.5 {
		t.Errorf("temperature not sent: %v", body["temperature"])
	}
	if _, ok := body["system"]; !ok {
		t.Error("system prompt not sent")
	}
}

func TestAnthropicProvider_FencedJSON(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicReply(w, "end_turn", "```json\n{\"question_text\":\"Name a prime.\",", "\"points\":2}\n```")
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages:  UserMessage("Write one question."),
		Schema:    questionSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"question_text":"Name a prime.","points":2}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
}

func TestAnthropicProvider_MaxTokens(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicReply(w, "max_tokens", `{"question_text":"Wh`)
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  UserMessage("test"),
		Schema:    questionSchema(),
		MaxTokens: 10,
	})
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_NoText(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicReply(w, "end_turn")
	})

	_, err := p.Generate(context.Background(), Request{Messages: UserMessage("test"), MaxTokens: 10})
	var se *ErrSchema
	if !errors.As(err, &se) {
		t.Fatalf("expected ErrSchema, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   string
		want   string
	}{
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", KindRateLimit},
		{"auth", http.StatusUnauthorized, "authentication_error", KindAuth},
		{"server error", http.StatusInternalServerError, "api_error", KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				anthropicError(w, tt.status, tt.kind)
			})

			_, err := p.Generate(context.Background(), Request{Messages: UserMessage("test"), MaxTokens: 100})
			if got := Kind(err); got != tt.want {
				t.Fatalf("Kind = %q, want %q (%v)", got, tt.want, err)
			}
			if calls != 1 {
				t.Fatalf("expected a single attempt, got %d", calls)
			}
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", "claude-opus-4-1"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
