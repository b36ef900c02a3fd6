// Package retrier implements bounded exponential backoff with jitter for
// idempotent requests against the execution API.
package retrier

import (
	"context"
	"math/rand"
	"time"
)

const jitterFactor = 0.1

// Retrier retries a function with exponentially growing pauses. The zero
// value is not usable; construct with New.
type Retrier struct {
	attempts int
	base     time.Duration
	max      time.Duration
}

// New returns a retrier making at most attempts calls, pausing base,
// 2*base, 4*base... between them, capped at max.
func New(attempts int, base, max time.Duration) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrier{attempts: attempts, base: base, max: max}
}

// Do calls fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned; ctx errors win over fn errors.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	interval := r.base

	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			pause := interval + time.Duration((rand.Float64()*2-1)*jitterFactor*float64(interval))
			if pause < 0 {
				pause = 0
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}

			interval *= 2
			if interval > r.max {
				interval = r.max
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}

	return err
}

// DoWithData is Do for functions returning a value.
func DoWithData[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
