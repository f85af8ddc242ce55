package llm

import (
	"context"
	"fmt"
	"sync"

	"quest/internal/token"
)

// MockClient implements Client with scripted responses, for tests and dry
// runs. Responses are returned in order; the last one repeats once the
// script is exhausted. Errs at index i takes precedence over Responses[i].
type MockClient struct {
	ModelName string
	Responses []string
	Errs      map[int]error

	mu    sync.Mutex
	calls int
}

var _ Client = (*MockClient)(nil)

// Complete returns the next scripted response.
func (m *MockClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	index := m.calls
	m.calls++
	m.mu.Unlock()

	if err, ok := m.Errs[index]; ok {
		return nil, err
	}
	if len(m.Responses) == 0 {
		return nil, fmt.Errorf("mock client has no scripted responses")
	}
	if index >= len(m.Responses) {
		index = len(m.Responses) - 1
	}

	content := m.Responses[index]
	promptTokens := 0
	for _, msg := range req.Messages {
		promptTokens += token.EstimateFast(msg.Content)
	}
	completionTokens := token.EstimateFast(content)
	return &CompletionResponse{
		Content:    content,
		StopReason: "stop",
		Usage: TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

// Model returns the configured model name.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock"
	}
	return m.ModelName
}

// Calls reports how many completions have been requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
