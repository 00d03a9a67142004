package provider

import (
	"context"
	"time"
)

// SimpleRetry retries a failed call with exponential backoff. Errors that
// fail the retryable check abort immediately.
type SimpleRetry struct {
	maxRetries int
	baseDelay  time.Duration
}

// NewSimpleRetry creates a retry helper; attempts = maxRetries + 1.
func NewSimpleRetry(maxRetries int, baseDelay time.Duration) *SimpleRetry {
	return &SimpleRetry{maxRetries: maxRetries, baseDelay: baseDelay}
}

// Execute runs fn until it succeeds, the retry budget is spent, or the
// context is cancelled.
func (sr *SimpleRetry) Execute(ctx context.Context, fn func() error) error {
	var lastErr error

	delay := sr.baseDelay
	for attempt := 0; attempt <= sr.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == sr.maxRetries || !retryable(lastErr) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
