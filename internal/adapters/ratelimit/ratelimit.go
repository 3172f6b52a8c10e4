// Package ratelimit throttles requests per key with a token bucket, either
// shared through redis or kept in process memory.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the shared limiter backend cannot be reached.
var ErrUnavailable = errors.New("rate limiter unavailable")

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Fallback asks primary first and uses secondary when primary fails.
type Fallback struct {
	primary   Limiter
	secondary Limiter
	onError   func(error)
}

// NewFallback combines two limiters. onError, when set, observes primary failures.
func NewFallback(primary, secondary Limiter, onError func(error)) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, onError: onError}
}

// Allow implements Limiter.
func (f *Fallback) Allow(ctx context.Context, key string) (Decision, error) {
	d, err := f.primary.Allow(ctx, key)
	if err == nil {
		return d, nil
	}
	if f.onError != nil {
		f.onError(err)
	}
	return f.secondary.Allow(ctx, key)
}
