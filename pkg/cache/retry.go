package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks failures to reach a remote store.
var ErrNetwork = errors.New("network error")

// RetryableError marks a store failure worth another attempt, such as a
// dropped Redis connection. Anything else fails the checkpoint call at once.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryAttempts and retryDelay bound checkpoint retries; the delay doubles
// after each failed attempt.
var (
	retryAttempts = 3
	retryDelay    = 200 * time.Millisecond
)

// RetryWithBackoff calls fn until it succeeds, returns a non-retryable
// error, or runs out of attempts. It gives up early when ctx is done.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt := range retryAttempts {
		if attempt > 0 {
			wait := time.NewTimer(retryDelay << (attempt - 1))
			select {
			case <-ctx.Done():
				wait.Stop()
				return ctx.Err()
			case <-wait.C:
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}
