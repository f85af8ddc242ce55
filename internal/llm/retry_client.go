package llm

import (
	"context"
	"time"

	questerrors "quest/internal/errors"
	"quest/internal/logging"
)

// retryClient wraps a Client with transport-level retry logic.
type retryClient struct {
	underlying  Client
	retryConfig questerrors.RetryConfig
	logger      logging.Logger
}

var _ Client = (*retryClient)(nil)

// NewRetryClient wraps an oracle client with exponential-backoff retries on
// transient failures. Malformed-content handling stays with the caller; this
// layer only retries transport errors.
func NewRetryClient(client Client, retryConfig questerrors.RetryConfig) Client {
	return &retryClient{
		underlying:  client,
		retryConfig: retryConfig,
		logger:      logging.NewComponentLogger("llm-retry"),
	}
}

func (c *retryClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	resp, err := questerrors.RetryWithResultAndLog(ctx, c.retryConfig, func(ctx context.Context) (*CompletionResponse, error) {
		return c.underlying.Complete(ctx, req)
	}, c.logger)

	duration := time.Since(start)
	if err != nil {
		c.logger.Warn("completion failed after retries (took %v): %v", duration, err)
		return nil, err
	}
	if duration > 5*time.Second {
		c.logger.Debug("completion succeeded after %v", duration)
	}
	return resp, nil
}

func (c *retryClient) Model() string {
	return c.underlying.Model()
}
