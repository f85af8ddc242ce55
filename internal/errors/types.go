// Package errors defines the quest error taxonomy and the retry engine used
// by oracle-facing components.
package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// MalformedResponseError reports an oracle response that could not be parsed
// into the expected structure. It is retryable at the caller's discretion; a
// retry issues a fresh oracle call and discards the malformed response.
type MalformedResponseError struct {
	Oracle string // "scoring" or "revision"
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s oracle returned malformed response: %s", e.Oracle, e.Reason)
}

// IsMalformed reports whether err is (or wraps) a MalformedResponseError.
func IsMalformed(err error) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed)
}

// EvaluationError reports that the evaluator exhausted its retry budget
// without obtaining a well-formed report. Fatal to the current run.
type EvaluationError struct {
	Attempts int
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// OptimizationError reports that the optimizer exhausted its retry budget
// without extracting a candidate. Recoverable at the loop level: the round is
// recorded as rejected and the prior code is retained.
type OptimizationError struct {
	Attempts int
	Err      error
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("optimization failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *OptimizationError) Unwrap() error { return e.Err }

// TransientError marks an error as retryable regardless of its cause.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an error as non-retryable regardless of its cause.
type PermanentError struct {
	Err        error
	StatusCode int
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransient reports whether an error is worth retrying at the transport
// level: explicitly marked transient, a network-level failure, or an HTTP
// status in the retryable set.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}
	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}

	if isNetworkError(err) {
		return true
	}

	lower := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "timed out", "connection reset", "temporarily unavailable", "too many requests"} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// TransientHTTPStatus reports whether an HTTP status code warrants a retry.
func TransientHTTPStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}
