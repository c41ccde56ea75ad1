package heartbeat

import (
	"encoding/json"
	"fmt"
	"mime"
	nethttp "net/http"
	"strings"
)

// envelope is the response wire format shared by every API endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *envelopeError  `json:"error,omitempty"`
}

type envelopeError struct {
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// parseEnvelope decodes body as the JSON response envelope. It reports
// ok=false when the content type does not declare JSON or the body does not
// decode, so gateway HTML error pages never pass.
func parseEnvelope(contentType string, body []byte) (*envelope, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	if mt != "application/json" && !strings.HasSuffix(mt, "+json") {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	return &env, true
}

// classifyResponse maps a completed attempt onto either the success payload
// or exactly one typed error. Status ranges are checked before the body
// shape, so a 503 fronted by a proxy HTML page still classifies as a
// retryable server error rather than a malformed response.
func classifyResponse(status int, header nethttp.Header, body []byte) (json.RawMessage, *Error) {
	env, parsed := parseEnvelope(header.Get("Content-Type"), body)

	switch {
	case status == nethttp.StatusTooManyRequests:
		// Retry-After is captured verbatim regardless of body shape.
		e := newError(KindRateLimited, errMessage(env, "rate limited"))
		e.StatusCode = status
		e.RetryAfter = header.Get("Retry-After")
		e.Body = body
		return nil, e

	case status >= 500 && !parsed:
		e := newError(KindServerError, fmt.Sprintf("server returned status %d", status))
		e.StatusCode = status
		e.Body = body
		return nil, e

	case status >= 400 && !parsed:
		e := newError(KindInvalidResponse, fmt.Sprintf("unexpected %d response with undecodable body", status))
		e.StatusCode = status
		e.Body = body
		return nil, e

	case !isSuccessStatus(status) && parsed:
		e := newError(kindForErrorStatus(status, env), errMessage(env, fmt.Sprintf("request failed with status %d", status)))
		e.StatusCode = status
		e.Body = body
		return nil, e

	case !parsed:
		e := newError(KindInvalidResponse, "response body is not a valid envelope")
		e.StatusCode = status
		e.Body = body
		return nil, e

	case !env.Success:
		e := newError(KindServerError, errMessage(env, "server reported failure"))
		e.StatusCode = status
		e.Body = body
		return nil, e
	}

	return env.Data, nil
}

// kindForErrorStatus maps a non-success status with a decoded envelope to an
// error kind. Unknown embedded codes fall back to server_error, matching the
// upstream API contract.
func kindForErrorStatus(status int, env *envelope) ErrorKind {
	switch {
	case status == nethttp.StatusUnauthorized:
		return KindInvalidAPIKey
	case status == nethttp.StatusNotFound:
		return KindJobNotFound
	case status == nethttp.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	}

	if env.Error != nil {
		if kind, ok := kindFromCode(env.Error.Code); ok {
			return kind
		}
	}
	return KindServerError
}

func errMessage(env *envelope, fallback string) string {
	if env != nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return fallback
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
