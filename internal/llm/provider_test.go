package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"topics":["ratios"]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"content":"Ratios compare quantities."}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: UserMessage("first")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"topics":["ratios"]}` {
		t.Fatalf("unexpected content %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: UserMessage("second")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"content":"Ratios compare quantities."}` {
		t.Fatalf("unexpected content %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsTransportError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var tr *ErrTransport
	if !errors.As(err, &tr) {
		t.Fatalf("expected ErrTransport, got: %T", err)
	}
}

func TestMockProvider_RespondFallback(t *testing.T) {
	mock := NewMockProvider()
	mock.Respond = func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(fmt.Sprintf(`{"echo":%q}`, req.Messages[0].Content))}
	}

	resp, err := mock.Generate(context.Background(), Request{Messages: UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"echo":"hi"}` {
		t.Fatalf("unexpected content %s", resp.Content)
	}
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"question_text":"x"}`)})

	_, err := mock.Generate(context.Background(), Request{Schema: questionSchema()})
	var schemaErr *ErrSchema
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected ErrSchema, got: %T (%v)", err, err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	req := Request{
		System:   "sys",
		Messages: UserMessage("hello"),
		Schema:   &Schema{Name: "empty", Definition: map[string]any{"type": "object"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
	if len(mock.CallsFor("empty")) != 1 {
		t.Fatalf("expected 1 call for schema 'empty'")
	}
}

func TestComplete_DecodesTypedValue(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"topics":["area","perimeter"]}`)})

	out, err := Complete[struct {
		Topics []string `json:"topics"`
	}](context.Background(), mock, Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Topics) != 2 || out.Topics[1] != "perimeter" {
		t.Fatalf("unexpected topics %v", out.Topics)
	}
}

func TestComplete_DecodeFailureIsSchemaError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"topics":"not-a-list"}`)})

	_, err := Complete[struct {
		Topics []string `json:"topics"`
	}](context.Background(), mock, Request{})
	if Kind(err) != KindSchema {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestComplete_TruncatedOutput(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"topics":["a"`), StopReason: "max_tokens"})

	_, err := Complete[map[string]any](context.Background(), mock, Request{})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ErrAuth{Err: errors.New("401")}, KindAuth},
		{&ErrRateLimit{Err: errors.New("429")}, KindRateLimit},
		{fmt.Errorf("step: %w", &ErrSchema{Err: errors.New("bad")}), KindSchema},
		{&ErrTransport{Err: errors.New("reset")}, KindTransport},
		{&ErrMaxTokensExceeded{}, KindMaxTokens},
		{context.DeadlineExceeded, KindTransport},
		{&ErrTransport{Err: context.Canceled}, KindCanceled},
		{errors.New("mystery"), KindUnknown},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	cause := errors.New("api")
	if Kind(mapHTTPStatus(401, cause)) != KindAuth {
		t.Fatal("401 should map to auth")
	}
	if Kind(mapHTTPStatus(403, cause)) != KindAuth {
		t.Fatal("403 should map to auth")
	}
	if Kind(mapHTTPStatus(429, cause)) != KindRateLimit {
		t.Fatal("429 should map to rate limit")
	}
	if Kind(mapHTTPStatus(503, cause)) != KindTransport {
		t.Fatal("503 should map to transport")
	}
}

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	if id := RunIDFrom(ctx); id != "" {
		t.Fatalf("expected empty run id, got %q", id)
	}

	ctx = WithRunID(WithPurpose(ctx, "generate_questions"), "run-1")
	if p := PurposeFrom(ctx); p != "generate_questions" {
		t.Fatalf("expected 'generate_questions', got %q", p)
	}
	if id := RunIDFrom(ctx); id != "run-1" {
		t.Fatalf("expected 'run-1', got %q", id)
	}
}

func TestConfig_Validate(t *testing.T) {
	openai := func(mut func(*OpenAIConfig)) Config {
		cfg := DefaultConfig()
		cfg.OpenAI.APIKey = "sk-test"
		mut(&cfg.OpenAI)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults without key", DefaultConfig(), true},
		{"openai complete", openai(func(*OpenAIConfig) {}), false},
		{"openai without model", openai(func(c *OpenAIConfig) { c.Model = "" }), true},
		{"openai without base url", openai(func(c *OpenAIConfig) { c.BaseURL = "" }), true},
		{"openai relative base url", openai(func(c *OpenAIConfig) { c.BaseURL = "/v1" }), true},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or", Model: "openai/gpt-4o"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnfence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{"```json{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := string(unfence(json.RawMessage(tt.in))); got != tt.want {
			t.Errorf("unfence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFinishValidatesAndTotalsUsage(t *testing.T) {
	req := Request{Schema: questionSchema()}

	resp, err := finish(req, json.RawMessage(`{"question_text":"Q","points":1}`), "end", Usage{InputTokens: 3, OutputTokens: 4}, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 7 || resp.Model != "m" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	_, err = finish(req, json.RawMessage(`{"points":1}`), "end", Usage{}, "m")
	var se *ErrSchema
	if !errors.As(err, &se) {
		t.Fatalf("expected ErrSchema, got %T (%v)", err, err)
	}

	_, err = finish(req, json.RawMessage(`{"quest`), "max_tokens", Usage{}, "m")
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}
