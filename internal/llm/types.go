// Package llm provides the oracle transport: an OpenAI-compatible completion
// client, a retrying wrapper, and a scripted mock for tests and dry runs.
package llm

import "context"

// CompletionRequest contains all parameters for an oracle completion call.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// CompletionResponse is the oracle's response.
type CompletionResponse struct {
	Content    string     `json:"content"`
	StopReason string     `json:"stop_reason,omitempty"`
	Usage      TokenUsage `json:"usage"`
}

// Message represents a conversation message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a single call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another call's usage into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Client is the minimal oracle contract. Implementations must be safe for
// sequential reuse; callers own any cross-call coordination.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Model() string
}

// Config holds transport-level settings for HTTP-based clients.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    int // seconds; 0 means the provider default
	Headers    map[string]string
	MaxRetries int
}
