package mock

import (
	"context"
	"sync"

	"github.com/poiesic/llmbatch/ai"
)

// MockChatCompleter is a test double for ai.ChatCompleter.
// It allows custom behavior injection via function fields and is safe for concurrent use.
type MockChatCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, the prompt is echoed back as the content.
	CompleteFunc func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)

	mu        sync.Mutex
	callCount int
	requests  []ai.ChatRequest
}

// NewMockChatCompleter creates a mock chat client that echoes prompts.
// Note: Returns concrete type to allow test assertions.
func NewMockChatCompleter() *MockChatCompleter {
	return &MockChatCompleter{}
}

// WithCompleteFunc installs custom behavior and returns the mock for chaining.
func (m *MockChatCompleter) WithCompleteFunc(fn func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)) *MockChatCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = fn
	return m
}

// Complete records the request and returns the injected or echoed response.
func (m *MockChatCompleter) Complete(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return TextResponse(req.Prompt), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of every request received, in call order.
func (m *MockChatCompleter) Requests() []ai.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears the call count, recorded requests and custom function.
func (m *MockChatCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.requests = nil
	m.CompleteFunc = nil
}

// TextResponse builds a single-choice response with the given content.
func TextResponse(content string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.ChatChoice{{Content: content, StopReason: "stop"}},
	}
}
