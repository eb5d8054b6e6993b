package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content    json.RawMessage
	Usage      Usage
	StopReason string
	Err        error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
// When Respond is set it is consulted once the queue is empty, which lets
// tests answer based on the request schema.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
	Respond   func(req Request) MockResponse
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response, or ErrTransport if nothing is
// left to answer with. Schema validation runs like it does for real providers.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var (
		resp   MockResponse
		queued bool
	)
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
		queued = true
	}
	respond := m.Respond
	m.mu.Unlock()

	if !queued {
		if respond == nil {
			return nil, &ErrTransport{Err: nil}
		}
		resp = respond(req)
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	stop := resp.StopReason
	if stop == "" {
		stop = "end"
	}
	return finish(req, resp.Content, stop, resp.Usage, "mock")
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsFor returns the recorded requests whose schema has the given name.
func (m *MockProvider) CallsFor(schemaName string) []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Request
	for _, c := range m.Calls {
		if c.Schema != nil && c.Schema.Name == schemaName {
			out = append(out, c)
		}
	}
	return out
}
