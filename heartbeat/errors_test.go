package heartbeat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	t.Run("kind and message", func(t *testing.T) {
		err := newError(KindJobNotFound, "unknown job")
		assert.Equal(t, "heartbeat job_not_found error: unknown job", err.Error())
	})

	t.Run("includes status", func(t *testing.T) {
		err := newError(KindServerError, "upstream broke")
		err.StatusCode = 503
		assert.Contains(t, err.Error(), "(status: 503)")
	})

	t.Run("includes cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := newTransportError(KindNetworkError, "request execution failed", cause)
		assert.Contains(t, err.Error(), "connection refused")
		assert.ErrorIs(t, err, cause)
	})
}

func TestKindHelpers(t *testing.T) {
	base := newError(KindRateLimited, "slow down")

	t.Run("direct", func(t *testing.T) {
		kind, ok := KindOf(base)
		assert.True(t, ok)
		assert.Equal(t, KindRateLimited, kind)
		assert.True(t, IsKind(base, KindRateLimited))
		assert.False(t, IsKind(base, KindTimeout))
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("ping failed: %w", base)
		assert.True(t, IsKind(wrapped, KindRateLimited))
	})

	t.Run("foreign error", func(t *testing.T) {
		_, ok := KindOf(errors.New("plain"))
		assert.False(t, ok)
		assert.False(t, IsRetryable(errors.New("plain")))
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := KindOf(nil)
		assert.False(t, ok)
	})
}

func TestRetryableVerdict(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		expect bool
	}{
		{"rate limited", newError(KindRateLimited, ""), true},
		{"server error", newError(KindServerError, ""), true},
		{"network error", newError(KindNetworkError, ""), true},
		{"timeout", newError(KindTimeout, ""), true},
		{"invalid api key", newError(KindInvalidAPIKey, ""), false},
		{"job not found", newError(KindJobNotFound, ""), false},
		{"invalid response", newError(KindInvalidResponse, ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.err.Retryable())
		})
	}

	t.Run("retryable status wins over fatal kind", func(t *testing.T) {
		err := newError(KindInvalidResponse, "weird 503 body")
		err.StatusCode = 503
		assert.True(t, err.Retryable())
	})
}

func TestKindFromCode(t *testing.T) {
	for _, code := range []string{
		"INVALID_API_KEY", "JOB_NOT_FOUND", "RATE_LIMITED",
		"SERVER_ERROR", "INVALID_RESPONSE", "NETWORK_ERROR", "TIMEOUT",
	} {
		kind, ok := kindFromCode(code)
		assert.True(t, ok, code)
		assert.NotEmpty(t, kind)
	}

	_, ok := kindFromCode("SOMETHING_ELSE")
	assert.False(t, ok)
}
