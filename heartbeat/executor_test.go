package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(baseURL string, timeout time.Duration) *executor {
	return &executor{
		httpClient: &nethttp.Client{},
		log:        testLogger(),
		baseURL:    baseURL,
		apiKey:     "test-key",
		timeout:    timeout,
		userAgent:  "jobpulse-go/test",
	}
}

func TestExecutorSendsExpectedRequest(t *testing.T) {
	var got *nethttp.Request
	var gotBody map[string]any

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		got = r.Clone(r.Context())
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, 200, okEnvelope)
	}))
	defer server.Close()

	exec := newTestExecutor(server.URL, time.Second)
	payload, err := exec.execute(context.Background(), "ping", "job-1", []byte(`{"status":"RUNNING"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, payload)

	assert.Equal(t, nethttp.MethodPost, got.Method)
	assert.Equal(t, "/v1/jobs/job-1/heartbeats", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "test-key", got.Header.Get(headerAPIKey))
	assert.Equal(t, "jobpulse-go/test", got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get(headerRequestID))
	assert.Equal(t, "RUNNING", gotBody["status"])
}

func TestExecutorRequestIDChangesPerAttempt(t *testing.T) {
	ids := make(map[string]struct{})
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ids[r.Header.Get(headerRequestID)] = struct{}{}
		writeJSON(w, 200, okEnvelope)
	}))
	defer server.Close()

	exec := newTestExecutor(server.URL, time.Second)
	for i := 0; i < 3; i++ {
		_, err := exec.execute(context.Background(), "ping", "job-1", []byte(`{}`))
		require.NoError(t, err)
	}
	assert.Len(t, ids, 3)
}

func TestExecutorTimeout(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		time.Sleep(300 * time.Millisecond)
		writeJSON(w, 200, okEnvelope)
	}))
	defer server.Close()

	exec := newTestExecutor(server.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := exec.execute(context.Background(), "ping", "job-1", []byte(`{}`))

	require.Error(t, err)
	assert.True(t, IsKind(err, KindTimeout), "got %v", err)
	assert.True(t, IsRetryable(err))
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestExecutorCallerCancellationPropagates(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		time.Sleep(time.Second)
		writeJSON(w, 200, okEnvelope)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	exec := newTestExecutor(server.URL, 10*time.Second)
	_, err := exec.execute(ctx, "ping", "job-1", []byte(`{}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Never wrapped as an SDK error
	var hbErr *Error
	assert.False(t, errors.As(err, &hbErr))
}

func TestExecutorNetworkFailure(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	server.Close() // refuse connections

	exec := newTestExecutor(server.URL, time.Second)
	_, err := exec.execute(context.Background(), "ping", "job-1", []byte(`{}`))

	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetworkError), "got %v", err)
	assert.True(t, IsRetryable(err))
}

func TestExecutorAttachesRequestContext(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, 404, `{"success":false,"error":{"message":"unknown job"}}`)
	}))
	defer server.Close()

	exec := newTestExecutor(server.URL, time.Second)
	_, err := exec.execute(context.Background(), "succeed", "job-9", []byte(`{}`))

	var hbErr *Error
	require.ErrorAs(t, err, &hbErr)
	assert.Equal(t, "job-9", hbErr.JobID)
	assert.Equal(t, "succeed", hbErr.Operation)
	assert.Equal(t, KindJobNotFound, hbErr.Kind)
}

func TestExecutorEscapesJobID(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotPath = r.URL.EscapedPath()
		writeJSON(w, 200, okEnvelope)
	}))
	defer server.Close()

	exec := newTestExecutor(server.URL, time.Second)
	_, err := exec.execute(context.Background(), "ping", "job/with spaces", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "/v1/jobs/job%2Fwith%20spaces/heartbeats", gotPath)
}
