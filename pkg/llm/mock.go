package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockChatClient implements ChatClient for testing. Responses are either
// scripted via the Responses queue or produced by CreateCompletionFunc.
type MockChatClient struct {
	mu sync.Mutex

	// CreateCompletionFunc, when set, handles every call.
	CreateCompletionFunc func(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Responses are returned in order when CreateCompletionFunc is nil.
	Responses []*CompletionResponse

	Model string

	// Requests records every request received, in order.
	Requests []*CompletionRequest

	callCount int
}

var _ ChatClient = (*MockChatClient)(nil)

func (m *MockChatClient) CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	m.callCount++

	if m.CreateCompletionFunc != nil {
		return m.CreateCompletionFunc(ctx, req)
	}

	if len(m.Responses) == 0 {
		return nil, fmt.Errorf("mock: no scripted response for call %d", m.callCount)
	}

	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return resp, nil
}

func (m *MockChatClient) GetModel() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-model"
}

// CallCount returns the number of CreateCompletion calls received.
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
