package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// MockClient is a canned-response implementation for tests and offline runs.
type MockClient struct {
	// responses are matched against the prompt in registration order.
	responses []mockResponse

	// Err, when set, is returned by every call.
	Err error

	mu       sync.Mutex
	requests []Request
}

type mockResponse struct {
	match   string
	content string
	err     error
}

// NewMockClient creates a MockClient that echoes prompts it has no reply for.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Respond registers content as the reply for any prompt containing match.
func (m *MockClient) Respond(match, content string) *MockClient {
	m.responses = append(m.responses, mockResponse{match: match, content: content})
	return m
}

// Fail registers err as the result for any prompt containing match.
func (m *MockClient) Fail(match string, err error) *MockClient {
	m.responses = append(m.responses, mockResponse{match: match, err: err})
	return m
}

// Complete implements [Client].
func (m *MockClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("nil req was passed to MockClient.Complete")
	}

	if err := ctx.Err(); err != nil {
		return nil, &CompletionError{Backend: "mock", Model: req.Model, Err: err}
	}

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, &CompletionError{Backend: "mock", Model: req.Model, Err: m.Err}
	}

	for _, r := range m.responses {
		if containsFold(req.Prompt, r.match) {
			if r.err != nil {
				return nil, &CompletionError{Backend: "mock", Model: req.Model, Err: r.err}
			}
			return &Response{Content: r.content, Model: req.Model}, nil
		}
	}

	return &Response{
		Content: fmt.Sprintf("Mock response for: %s", req.Prompt),
		Model:   req.Model,
	}, nil
}

// Requests returns a copy of every request received so far.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Shutdown implements [Client].
func (m *MockClient) Shutdown(ctx context.Context) error {
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
