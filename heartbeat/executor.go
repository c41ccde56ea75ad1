package heartbeat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobpulse/jobpulse-go/logger"
)

const (
	headerAPIKey    = "X-API-Key"
	headerRequestID = "X-Request-ID"
)

// executor performs exactly one network attempt per call. Retry decisions
// live in the retry driver; the executor only sends, reads, and classifies.
type executor struct {
	httpClient *nethttp.Client
	log        logger.Logger
	baseURL    string
	apiKey     string
	timeout    time.Duration
	userAgent  string
}

// execute POSTs body for jobID and returns the envelope's data payload or a
// classified error. The per-attempt timeout is owned here and released on
// every exit path; the caller's own cancellation passes through untouched.
func (e *executor) execute(ctx context.Context, op, jobID string, body []byte) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1/jobs/%s/heartbeats", strings.TrimSuffix(e.baseURL, "/"), url.PathEscape(jobID))

	req, err := nethttp.NewRequestWithContext(attemptCtx, nethttp.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, e.withMeta(newTransportError(KindNetworkError, "failed to create request", err), op, jobID)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set(headerAPIKey, e.apiKey)
	req.Header.Set(headerRequestID, uuid.NewString())

	e.log.Debug().
		Str("job_id", jobID).
		Str("operation", op).
		Str("url", endpoint).
		Bytes("body", body).
		Msg("sending heartbeat")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, e.classifyTransport(ctx, err, op, jobID)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, e.classifyTransport(ctx, err, op, jobID)
	}

	e.log.Debug().
		Str("job_id", jobID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Bytes("body", raw).
		Msg("heartbeat response")

	payload, hbErr := classifyResponse(resp.StatusCode, resp.Header, raw)
	if hbErr != nil {
		return nil, e.withMeta(hbErr, op, jobID)
	}
	return payload, nil
}

// classifyTransport distinguishes the three causes behind a failed exchange:
// the caller's own cancellation (propagated verbatim), the per-attempt
// timeout firing, and a genuine transport failure.
func (e *executor) classifyTransport(ctx context.Context, err error, op, jobID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return e.withMeta(newTransportError(KindTimeout, fmt.Sprintf("attempt exceeded %v timeout", e.timeout), err), op, jobID)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return e.withMeta(newTransportError(KindTimeout, fmt.Sprintf("attempt exceeded %v timeout", e.timeout), err), op, jobID)
	}

	return e.withMeta(newTransportError(KindNetworkError, "request execution failed", err), op, jobID)
}

func (e *executor) withMeta(hbErr *Error, op, jobID string) *Error {
	hbErr.Operation = op
	hbErr.JobID = jobID
	return hbErr
}
