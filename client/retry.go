// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryConfig controls how transient failures are retried.
type RetryConfig struct {
	// MaxAttempts bounds the total number of attempts, including the
	// first. Zero or negative disables retries.
	MaxAttempts int
	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the computed wait.
	MaxBackoff time.Duration
	// Multiplier grows the wait between consecutive attempts.
	Multiplier float64
	// Jitter randomizes each wait within ±25% to avoid synchronized
	// retry storms.
	Jitter bool
}

// DefaultRetryConfig returns the retry configuration used when none
// is supplied.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// backoff computes the wait before attempt n+2, given that attempt
// n+1 (zero-based n) just failed: initial * multiplier^n, capped at
// MaxBackoff, with ±25% jitter when enabled.
func (c *RetryConfig) backoff(attempt int) time.Duration {
	wait := float64(c.InitialBackoff)
	for range attempt {
		wait *= c.Multiplier
	}
	if max := float64(c.MaxBackoff); wait > max {
		wait = max
	}
	if c.Jitter {
		wait *= 0.75 + rand.Float64()*0.5
	}
	return time.Duration(wait)
}

// retryWithConfig runs fn up to cfg.MaxAttempts times. A failed
// attempt is re-issued only when the operation is idempotent and the
// classified error kind is transient; everything else surfaces
// immediately. A server-provided Retry-After overrides the computed
// wait for that attempt. Exhausting the budget surfaces the last
// classified error unchanged.
func retryWithConfig[T any](ctx context.Context, cfg *RetryConfig, logger *slog.Logger, idempotent bool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := 1
	if cfg != nil && cfg.MaxAttempts > 0 {
		maxAttempts = cfg.MaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !idempotent || attempt == maxAttempts-1 {
			return zero, err
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return zero, err
		}

		wait := cfg.backoff(attempt)
		if apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}

		logger.DebugContext(ctx, "retrying request",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.String("kind", string(apiErr.Kind)))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
