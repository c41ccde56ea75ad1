package heartbeat

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jobpulse/jobpulse-go/config"
	"github.com/jobpulse/jobpulse-go/logger"
)

const (
	// DefaultBaseURL is the production monitoring endpoint
	DefaultBaseURL = "https://api.jobpulse.io"

	// DefaultTimeout bounds a single attempt, not the whole retry loop
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retries after the first attempt
	DefaultMaxRetries = 3

	// DefaultBaseDelay is the default backoff base delay
	DefaultBaseDelay = 1 * time.Second
)

// Status of a job run as reported to the monitoring API.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Heartbeat is a single report of a job run's state. Timestamps are
// marshaled as RFC 3339 strings.
type Heartbeat struct {
	Status      Status            `json:"status" validate:"required,oneof=RUNNING SUCCESS FAILED"`
	StartedAt   *time.Time        `json:"startedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	Output      string            `json:"output,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PingResult is the server's acknowledgment of a heartbeat.
type PingResult struct {
	JobID      string    `json:"jobId"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Client reports heartbeats to the monitoring API. Its configuration is
// fixed at construction, so a single client may be shared by any number of
// goroutines; concurrent calls are independent of each other.
type Client struct {
	exec     *executor
	policy   RetryPolicy
	log      logger.Logger
	validate *validator.Validate
}

// NewClient creates a client for the production endpoint with default
// timeout and retry settings.
func NewClient(apiKey string, log logger.Logger) *Client {
	return NewBuilder(apiKey, log).Build()
}

// FromConfig builds a client from a resolved configuration.
func FromConfig(cfg *config.Config, log logger.Logger) *Client {
	return NewBuilder(cfg.API.Key, log).
		WithBaseURL(cfg.API.URL).
		WithTimeout(cfg.API.Timeout).
		WithRetryPolicy(RetryPolicy{MaxRetries: cfg.Retry.MaxRetries, BaseDelay: cfg.Retry.BaseDelay}).
		WithUserAgent(cfg.API.UserAgent).
		Build()
}

// Builder provides a fluent interface for configuring the client.
type Builder struct {
	apiKey     string
	log        logger.Logger
	baseURL    string
	timeout    time.Duration
	policy     RetryPolicy
	userAgent  string
	httpClient *nethttp.Client
}

// NewBuilder creates a builder seeded with default settings.
func NewBuilder(apiKey string, log logger.Logger) *Builder {
	return &Builder{
		apiKey:    apiKey,
		log:       log,
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		policy:    RetryPolicy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay},
		userAgent: "jobpulse-go/" + config.Version,
	}
}

// WithBaseURL overrides the monitoring endpoint
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.baseURL = baseURL
	return b
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithRetryPolicy sets the default retry policy for all calls
func (b *Builder) WithRetryPolicy(policy RetryPolicy) *Builder {
	b.policy = policy
	return b
}

// WithUserAgent overrides the client-identifying header
func (b *Builder) WithUserAgent(userAgent string) *Builder {
	b.userAgent = userAgent
	return b
}

// WithHTTPClient substitutes the underlying HTTP client, mainly for tests
func (b *Builder) WithHTTPClient(hc *nethttp.Client) *Builder {
	b.httpClient = hc
	return b
}

// Build creates the client with the configured options.
func (b *Builder) Build() *Client {
	hc := b.httpClient
	if hc == nil {
		// No client-level timeout; the executor's per-attempt context owns it.
		hc = &nethttp.Client{}
	}
	return &Client{
		exec: &executor{
			httpClient: hc,
			log:        b.log,
			baseURL:    b.baseURL,
			apiKey:     b.apiKey,
			timeout:    b.timeout,
			userAgent:  b.userAgent,
		},
		policy:   b.policy,
		log:      b.log,
		validate: validator.New(),
	}
}

// Ping reports hb for jobID, retrying transient failures per the client's
// default policy, and returns the server's acknowledgment.
func (c *Client) Ping(ctx context.Context, jobID string, hb *Heartbeat) (*PingResult, error) {
	return c.ping(ctx, "ping", jobID, hb, c.policy)
}

// PingWithPolicy is Ping with a per-call retry policy override.
func (c *Client) PingWithPolicy(ctx context.Context, jobID string, hb *Heartbeat, policy RetryPolicy) (*PingResult, error) {
	return c.ping(ctx, "ping", jobID, hb, policy)
}

// Start reports that the job run has begun.
func (c *Client) Start(ctx context.Context, jobID string) (*PingResult, error) {
	now := time.Now().UTC()
	return c.ping(ctx, "start", jobID, &Heartbeat{Status: StatusRunning, StartedAt: &now}, c.policy)
}

// Succeed reports a successful completion with optional output.
func (c *Client) Succeed(ctx context.Context, jobID, output string) (*PingResult, error) {
	now := time.Now().UTC()
	return c.ping(ctx, "succeed", jobID, &Heartbeat{Status: StatusSuccess, CompletedAt: &now, Output: output}, c.policy)
}

// Fail reports a failed completion carrying the job's error message.
func (c *Client) Fail(ctx context.Context, jobID string, jobErr error) (*PingResult, error) {
	now := time.Now().UTC()
	hb := &Heartbeat{Status: StatusFailed, CompletedAt: &now}
	if jobErr != nil {
		hb.Error = jobErr.Error()
	}
	return c.ping(ctx, "fail", jobID, hb, c.policy)
}

// Track runs fn bracketed by RUNNING and SUCCESS/FAILED heartbeats. The
// business outcome always wins: when fn fails, Track returns fn's error even
// if the completion report itself could not be delivered. A failure to
// report the start is logged and does not stop the job.
func (c *Client) Track(ctx context.Context, jobID string, fn func(ctx context.Context) (string, error)) (string, error) {
	started := time.Now().UTC()

	if _, err := c.ping(ctx, "track", jobID, &Heartbeat{Status: StatusRunning, StartedAt: &started}, c.policy); err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		c.log.Warn().Err(err).Str("job_id", jobID).Msg("failed to report job start")
	}

	output, jobErr := fn(ctx)
	completed := time.Now().UTC()

	if jobErr != nil {
		hb := &Heartbeat{Status: StatusFailed, StartedAt: &started, CompletedAt: &completed, Error: jobErr.Error()}
		if _, err := c.ping(ctx, "track", jobID, hb, c.policy); err != nil {
			c.log.Warn().Err(err).Str("job_id", jobID).Msg("failed to report job failure")
		}
		return output, jobErr
	}

	hb := &Heartbeat{Status: StatusSuccess, StartedAt: &started, CompletedAt: &completed, Output: output}
	if _, err := c.ping(ctx, "track", jobID, hb, c.policy); err != nil {
		return output, err
	}
	return output, nil
}

func (c *Client) ping(ctx context.Context, op, jobID string, hb *Heartbeat, policy RetryPolicy) (*PingResult, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job id cannot be empty")
	}
	if hb == nil {
		return nil, fmt.Errorf("heartbeat cannot be nil")
	}
	if err := c.validate.Struct(hb); err != nil {
		return nil, fmt.Errorf("invalid heartbeat: %w", err)
	}

	body, err := json.Marshal(hb)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal heartbeat: %w", err)
	}

	data, err := c.do(ctx, policy, func(ctx context.Context) (json.RawMessage, error) {
		return c.exec.execute(ctx, op, jobID, body)
	})
	if err != nil {
		return nil, err
	}

	res := &PingResult{JobID: jobID}
	if len(data) > 0 {
		// The acknowledgment fields are best-effort; an empty data object
		// is a valid response.
		if err := json.Unmarshal(data, res); err != nil {
			c.log.Debug().Err(err).Str("job_id", jobID).Msg("unrecognized acknowledgment payload")
		}
	}
	return res, nil
}
