package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable means the backend could not be reached. RedisCache wraps
	// it in a RetryableError.
	ErrUnavailable = errors.New("cache unavailable")

	ErrUnsupportedURL = errors.New("unsupported cache url")
)

// RetryableError marks a failure worth retrying, such as a refused
// connection while Redis restarts.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as retryable. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries with a doubling delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

var defaultBackoff = Backoff{Attempts: 3, Delay: 200 * time.Millisecond}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned. ctx cancellation during a
// wait returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// RetryWithBackoff runs fn with the default policy of three attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return defaultBackoff.Do(ctx, fn)
}
