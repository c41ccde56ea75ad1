package heartbeat

import (
	"io"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/jobpulse/jobpulse-go/logger"
)

const okEnvelope = `{"success":true,"data":{"jobId":"job-1","receivedAt":"2026-01-02T15:04:05Z"}}`

func testLogger() logger.Logger {
	return logger.NewWithOutput("error", io.Discard)
}

func newTestClient(t *testing.T, baseURL string, policy RetryPolicy, timeout time.Duration) *Client {
	t.Helper()
	return NewBuilder("test-key", testLogger()).
		WithBaseURL(baseURL).
		WithTimeout(timeout).
		WithRetryPolicy(policy).
		Build()
}

func writeJSON(w nethttp.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeHTML(w nethttp.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
