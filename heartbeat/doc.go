// Package heartbeat reports job-execution heartbeats to the JobPulse
// monitoring API and retries transient failures.
//
// Retries
//   - Controlled via RetryPolicy{MaxRetries, BaseDelay}, settable per client
//     or per call.
//   - Retries occur on:
//   - Transport errors (network failures)
//   - Per-attempt timeouts
//   - HTTP 429 and 5xx responses
//   - Authentication failures, unknown jobs, and malformed responses are not
//     retried.
//   - Caller cancellation is propagated as-is and never retried.
//
// Backoff Strategy
//   - Exponential backoff based on BaseDelay: delay = BaseDelay * 2^attempt
//   - Jitter is applied: actual sleep is random in [delay/2, delay).
//   - A Retry-After header on 429 responses overrides the computed delay.
//
// Notes
//   - Each attempt re-sends the same marshaled body with a fresh request ID.
//   - Each call makes at most MaxRetries+1 attempts, strictly sequentially.
package heartbeat
