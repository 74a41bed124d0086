package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/webdigest/models"
)

// Navigator loads a URL with a bounded number of attempts.
type Navigator struct {
	// MaxAttempts is the total number of attempts, not retries.
	MaxAttempts int

	// Timeout bounds each attempt.
	Timeout time.Duration

	// RetryDelay is slept between attempts. Zero retries immediately.
	RetryDelay time.Duration
}

// NewNavigator returns a Navigator with the given policy. Non-positive
// attempts and timeouts fall back to 3 attempts of 60s.
func NewNavigator(maxAttempts int, timeout, retryDelay time.Duration) *Navigator {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Navigator{MaxAttempts: maxAttempts, Timeout: timeout, RetryDelay: retryDelay}
}

// Navigate loads url into page, retrying until one attempt succeeds or
// MaxAttempts is used up. It returns the number of attempts made. On
// exhaustion the error is a NAVIGATION_FAILURE wrapping the last cause.
func (n *Navigator) Navigate(ctx context.Context, page Navigable, url string) (int, error) {
	var lastErr error
	attempts := 0

	for attempts < n.MaxAttempts {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}

		attempts++
		err := page.Navigate(ctx, url, n.Timeout)
		if err == nil {
			if attempts > 1 {
				slog.Info("navigation succeeded after retry", "url", url, "attempt", attempts)
			}
			return attempts, nil
		}
		lastErr = err

		slog.Warn("navigation attempt failed",
			"url", url,
			"attempt", attempts,
			"max_attempts", n.MaxAttempts,
			"error", err,
		)

		if attempts < n.MaxAttempts && n.RetryDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(n.RetryDelay):
			}
		}
	}

	return attempts, models.NewDigestError(
		models.ErrCodeNavigation,
		"failed to load "+url,
		lastErr,
	)
}
