// Package retry runs an operation a bounded number of times with a delay
// between attempts.
//
//	attempts, err := retry.Do(ctx, retry.Policy{
//		MaxAttempts: 3,
//		Delay:       retry.Linear(time.Second),
//	}, func(ctx context.Context, attempt int) error {
//		return send(ctx)
//	})
//
// There is no delay after the final attempt. Errors wrapped with Permanent stop
// the loop immediately.
package retry

import (
	"context"
	"errors"
	"time"
)

// DelayFunc returns how long to wait after the given failed attempt (1-based).
type DelayFunc func(attempt int, err error) time.Duration

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	Delay DelayFunc
	Sleep SleepFunc
	// OnFailure observes every failed attempt; delay is zero when no attempt follows.
	OnFailure   func(attempt int, err error, delay time.Duration)
	MaxAttempts int
}

// Do calls fn until it succeeds, returns a permanent error, the context is done,
// or MaxAttempts is reached. It returns the number of attempts made and the last error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) (int, error) {
	maxAttempts := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = Wait
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return attempt, nil
		}

		last := attempt == maxAttempts || IsPermanent(err)

		var delay time.Duration
		if !last && p.Delay != nil {
			delay = p.Delay(attempt, err)
		}
		if p.OnFailure != nil {
			p.OnFailure(attempt, err, delay)
		}
		if last {
			return attempt, unwrapPermanent(err)
		}

		if waitErr := sleep(ctx, delay); waitErr != nil {
			return attempt, errors.Join(err, waitErr)
		}
	}

	return maxAttempts, err
}

// Linear returns a DelayFunc of base × attempt.
func Linear(base time.Duration) DelayFunc {
	return func(attempt int, _ error) time.Duration {
		return base * time.Duration(attempt)
	}
}

// NoDelay retries immediately.
func NoDelay(int, error) time.Duration { return 0 }

// Wait sleeps for d, returning early with ctx.Err() if ctx is done first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

func unwrapPermanent(err error) error {
	var pe *permanentError
	if errors.As(err, &pe) {
		return pe.err
	}
	return err
}
