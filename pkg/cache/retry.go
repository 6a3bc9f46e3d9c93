package cache

import (
	"context"
	"errors"
	"net"
	"time"
)

const (
	connectAttempts = 3
	connectDelay    = 200 * time.Millisecond
)

// retry executes fn up to attempts times with exponential backoff. Only
// errors accepted by retryable are retried; others are returned at once.
// The delay doubles after each failed attempt.
func retry(ctx context.Context, attempts int, delay time.Duration, retryable func(error) bool, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// isTransient reports whether err looks like a network failure worth
// retrying, such as a refused connection while a server starts.
func isTransient(err error) bool {
	var ne net.Error
	return errors.As(err, &ne)
}
