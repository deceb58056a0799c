package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Policy decides how often and how far apart attempts are made.
type Policy struct {
	// MaxAttempts counts the first attempt. Values below 1 mean 1.
	MaxAttempts int
	// InitialBackoff is the wait after the first failure.
	InitialBackoff time.Duration
	// MaxBackoff caps every wait. Zero means no cap.
	MaxBackoff time.Duration
	// Factor scales the wait per attempt. 1 waits a constant time, 0 grows
	// it linearly (InitialBackoff * attempt), anything above 1 grows it
	// exponentially.
	Factor float64
	// Jitter spreads each wait by up to this fraction in both directions.
	Jitter float64
	// RetryIf reports whether err is worth another attempt. Nil retries
	// everything except context errors.
	RetryIf func(error) bool
	// OnRetry is called before waiting.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Linear returns a policy waiting attempt*step between attempts.
func Linear(maxAttempts int, step time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, InitialBackoff: step}
}

// Exponential returns a policy doubling the wait from initial up to max with
// 10% jitter.
func Exponential(maxAttempts int, initial, max time.Duration) Policy {
	return Policy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: initial,
		MaxBackoff:     max,
		Factor:         2,
		Jitter:         0.1,
	}
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Retryable reports whether err is worth another attempt by default.
func Retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, the policy runs out of attempts, RetryIf
// rejects an error or ctx ends. attempt starts at 1. An error RetryIf
// rejects and a context error are returned as is; running out of attempts
// returns an *ExhaustedError wrapping the last failure.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = Retryable
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !retryIf(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := p.backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, &ExhaustedError{Attempts: p.MaxAttempts, Err: lastErr}
}

// Do is Retry for functions without a result.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	_, err := Retry(ctx, p, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}

// backoff is the wait after the given failed attempt.
func (p Policy) backoff(attempt int) time.Duration {
	var d float64
	switch {
	case p.Factor == 0:
		d = float64(p.InitialBackoff) * float64(attempt)
	default:
		d = float64(p.InitialBackoff) * math.Pow(p.Factor, float64(attempt-1))
	}

	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
