package heartbeat

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories produced by the client.
type ErrorKind string

const (
	KindInvalidAPIKey   ErrorKind = "invalid_api_key"
	KindJobNotFound     ErrorKind = "job_not_found"
	KindRateLimited     ErrorKind = "rate_limited"
	KindServerError     ErrorKind = "server_error"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindNetworkError    ErrorKind = "network_error"
	KindTimeout         ErrorKind = "timeout"
)

// Error is the typed error surfaced for every failed call. The kind is fixed
// when the error is created and never reassigned.
type Error struct {
	Kind    ErrorKind
	Message string
	// StatusCode is 0 when no response was received.
	StatusCode int
	// RetryAfter holds the verbatim Retry-After header value, if any.
	RetryAfter string
	// Body is the raw response body. It may contain sensitive data and is
	// only logged at debug level.
	Body []byte
	// JobID and Operation are debugging metadata; they never affect
	// classification or retry decisions.
	JobID     string
	Operation string

	cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("heartbeat %s error: %s", e.Kind, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status: %d)", msg, e.StatusCode)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether the failure is worth another attempt. A retryable
// HTTP status wins over the kind derived from the body, so a 503 carrying an
// unparseable or misleading payload is still retried.
func (e *Error) Retryable() bool {
	switch e.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	switch e.Kind {
	case KindRateLimited, KindServerError, KindNetworkError, KindTimeout:
		return true
	}
	return false
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func newTransportError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf returns the error kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var hbErr *Error
	if errors.As(err, &hbErr) {
		return hbErr.Kind, true
	}
	return "", false
}

// IsKind checks whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsRetryable checks whether err is a retryable heartbeat error. Non-SDK
// errors, including caller cancellation, are never retryable.
func IsRetryable(err error) bool {
	var hbErr *Error
	if errors.As(err, &hbErr) {
		return hbErr.Retryable()
	}
	return false
}

// kindFromCode maps an explicit error-code field in a response body to a
// known kind.
func kindFromCode(code string) (ErrorKind, bool) {
	switch code {
	case "INVALID_API_KEY":
		return KindInvalidAPIKey, true
	case "JOB_NOT_FOUND":
		return KindJobNotFound, true
	case "RATE_LIMITED":
		return KindRateLimited, true
	case "SERVER_ERROR":
		return KindServerError, true
	case "INVALID_RESPONSE":
		return KindInvalidResponse, true
	case "NETWORK_ERROR":
		return KindNetworkError, true
	case "TIMEOUT":
		return KindTimeout, true
	}
	return "", false
}
