package queue

import (
	"context"
	"log/slog"
	"time"
)

// MaxBackoff caps the delay between attempts.
const MaxBackoff = 30 * time.Second

// RetryWithBackoff retries an operation with exponential backoff.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: delay after the first failure, doubling on each retry up to MaxBackoff
// Returns the error from the last attempt if all attempts fail.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Info("connected after retry", "attempt", attempt)
			}
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		slog.Warn("attempt failed, retrying", "attempt", attempt, "maxAttempts", maxAttempts, "delay", delay, "error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > MaxBackoff {
			delay = MaxBackoff
		}
	}

	return lastErr
}
