package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a shared cache backend cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// transientError marks a failure worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// backoff retries transient failures with a doubling delay.
type backoff struct {
	attempts int
	delay    time.Duration
}

var defaultBackoff = backoff{attempts: 3, delay: 100 * time.Millisecond}

// do runs fn until it succeeds, returns a non-transient error, runs out of
// attempts or ctx ends.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	var err error
	for i := range b.attempts {
		if err = fn(); err == nil || !isTransient(err) {
			return err
		}
		if i == b.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
