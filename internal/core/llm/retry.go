package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

// RetryConfig configures the attempt budget for one logical LLM call.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  defaultMaxAttempts,
		InitialDelay: defaultInitialDelay,
	}
}

// withRetry runs fn until it succeeds, returns a permanent error or the budget runs out.
// onRetry is called before every attempt after the first.
func withRetry(ctx context.Context, cfg RetryConfig, fn func(attempt int) error, onRetry func(attempt int, err error)) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}

	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}

	var lastErr error

	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if onRetry != nil {
				onRetry(attempt, lastErr)
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("retry interrupted: %w", errors.Join(ctx.Err(), lastErr))
			case <-time.After(delay):
				delay = min(delay*delayMultiplier, maxRetryDelay)
			}
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		if !isRetryableError(ctx, lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// isRetryableError reports whether another attempt may succeed. A per-call
// deadline is retryable while the parent context is still alive.
func isRetryableError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	return !errors.Is(err, apperrors.ErrUnsupportedProvider) &&
		!errors.Is(err, apperrors.ErrCircuitBreakerOpen) &&
		!errors.Is(err, context.Canceled)
}
