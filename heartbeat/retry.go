package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// RetryPolicy bounds the retry loop: at most MaxRetries+1 attempts, with
// delays derived from BaseDelay. Immutable once supplied to a call.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// A misbehaving server must not park the caller indefinitely via an
// oversized Retry-After hint.
const maxRetryAfter = 5 * time.Minute

type attemptFunc func(ctx context.Context) (json.RawMessage, error)

// do drives fn until success, a fatal error, caller cancellation, or an
// exhausted retry budget. It performs no network I/O itself. Intermediate
// failures are logged but never surfaced; the caller sees a payload or the
// last classified error.
func (c *Client) do(ctx context.Context, policy RetryPolicy, fn attemptFunc) (json.RawMessage, error) {
	for attempt := 0; ; attempt++ {
		payload, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				c.log.Info().Int("attempt", attempt+1).Msg("heartbeat delivered after retry")
			}
			return payload, nil
		}

		var hbErr *Error
		if !errors.As(err, &hbErr) {
			// Not ours. Caller cancellation lands here and is surfaced
			// verbatim on first occurrence.
			return nil, err
		}

		if !hbErr.Retryable() || attempt >= policy.MaxRetries {
			return nil, err
		}

		delay := retryDelay(hbErr, attempt, policy.BaseDelay)
		c.log.Warn().
			Err(err).
			Str("job_id", hbErr.JobID).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("heartbeat attempt failed, retrying")

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// retryDelay prefers the server's Retry-After hint for rate-limited
// failures; everything else gets jittered exponential backoff.
func retryDelay(hbErr *Error, attempt int, base time.Duration) time.Duration {
	if hbErr.Kind == KindRateLimited {
		if d, ok := ParseRetryAfter(hbErr.RetryAfter); ok {
			if d > maxRetryAfter {
				d = maxRetryAfter
			}
			return d
		}
	}
	return Backoff(attempt, base)
}

// sleep waits for d or until the caller cancels, whichever comes first.
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
