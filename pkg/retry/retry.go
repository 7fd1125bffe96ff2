// Package retryx retries transient operations with a linearly growing backoff.
package retryx

import (
	"context"
	"errors"
	"time"
)

type Policy struct {
	Attempts int           `split_words:"true" default:"3"`
	Backoff  time.Duration `split_words:"true" default:"500ms"`
}

var DefaultPolicy = Policy{Attempts: 3, Backoff: 500 * time.Millisecond}

// Permanent wraps an error so Do stops retrying immediately.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op up to p.Attempts times. The sleep between attempts grows
// linearly: p.Backoff after the first failure, twice that after the second,
// and so on. It returns nil on the first success, the last error otherwise.
// Context cancellation ends the loop early.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := op()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if i < attempts-1 && p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff * time.Duration(i+1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			case <-timer.C:
			}
		}
	}
	return lastErr
}
