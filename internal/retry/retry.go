package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Default backoff parameters.
const (
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
	DefaultJitter         = 0.25
)

// Config configures Do.
type Config struct {
	// Attempts is the total number of calls, including the first one.
	// Values below 1 mean a single call.
	Attempts int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Jitter is the fraction (0 to 1) of each backoff added at random.
	Jitter float64
}

func (c Config) attempts() int {
	return max(c.Attempts, 1)
}

// Backoff returns the wait after the given failed attempt (0-based),
// without jitter.
func (c Config) Backoff(attempt int) time.Duration {
	initial := c.InitialBackoff
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	maxBackoff := c.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}

	backoff := float64(initial) * math.Pow(2, float64(max(attempt, 0)))
	if backoff > float64(maxBackoff) {
		return maxBackoff
	}
	return time.Duration(backoff)
}

func (c Config) jittered(attempt int) time.Duration {
	backoff := c.Backoff(attempt)
	jitter := c.Jitter
	switch {
	case jitter <= 0:
		return backoff
	case jitter > 1:
		jitter = 1
	}
	//nolint:gosec // G404: jitter for retry timing is not security-sensitive
	return backoff + time.Duration(float64(backoff)*jitter*rand.Float64())
}

// Option customizes Do.
type Option func(*options)

type options struct {
	onRetry func(attempt int, err error, wait time.Duration)
}

// WithOnRetry registers a callback invoked before each wait.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(o *options) {
		o.onRetry = fn
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a permanent error, the
// attempts are exhausted or ctx is done. It returns the last error of
// fn, unwrapped from Permanent.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, opts ...Option) error {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	attempts := cfg.attempts()
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		if err = fn(ctx); err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == attempts-1 {
			break
		}

		wait := cfg.jittered(attempt)
		if o.onRetry != nil {
			o.onRetry(attempt+1, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
