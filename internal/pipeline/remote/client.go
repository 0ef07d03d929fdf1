// Package remote calls an external inference server that hosts the trained
// price pipeline.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain/estimate"
	"github.com/kailas-cloud/homedex/internal/metrics"
)

const pipelineLabel = "remote"

// maxBodyBytes caps error bodies read from the server.
const maxBodyBytes = 64 << 10

// Config holds the remote pipeline settings.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HTTPClient       *http.Client
	Logger           *zap.Logger
}

// Client is a price pipeline served over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// StatusError is a non-2xx response from the inference server.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("inference server returned %d", e.Status)
	}
	return fmt.Sprintf("inference server returned %d: %s", e.Status, e.Detail)
}

// New creates a remote pipeline client.
func New(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    httpClient,
		logger:  logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "pipeline-remote",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Rejected inputs are the caller's fault and must not open the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && se.Status < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.PipelineBreakerState.WithLabelValues(pipelineLabel).Set(float64(to))
			logger.Warn("pipeline circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

type predictRequest struct {
	Rows []map[string]any `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

type levelsResponse struct {
	Levels map[string][]string `json:"levels"`
}

// Predict implements the estimate pipeline. Returns log(1 + price).
func (c *Client) Predict(ctx context.Context, f *estimate.Features) (float64, error) {
	row := make(map[string]any, len(estimate.CategoricalColumns)+len(estimate.NumericColumns))
	for col, v := range f.Categorical() {
		row[col] = v
	}
	for col, v := range f.Numeric() {
		row[col] = v
	}
	body, err := json.Marshal(predictRequest{Rows: []map[string]any{row}})
	if err != nil {
		return 0, fmt.Errorf("encode predict request: %w", err)
	}

	raw, err := c.do(ctx, "predict", http.MethodPost, "/predict", body)
	if err != nil {
		return 0, err
	}

	var resp predictResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.countError("decode")
		return 0, fmt.Errorf("decode predict response: %w", err)
	}
	if len(resp.Predictions) != 1 {
		c.countError("empty_response")
		return 0, fmt.Errorf("expected 1 prediction, got %d", len(resp.Predictions))
	}
	return resp.Predictions[0], nil
}

// Levels fetches the categorical levels the hosted model was trained on.
func (c *Client) Levels(ctx context.Context) (estimate.Levels, error) {
	raw, err := c.do(ctx, "levels", http.MethodGet, "/levels", nil)
	if err != nil {
		return nil, err
	}
	var resp levelsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.countError("decode")
		return nil, fmt.Errorf("decode levels response: %w", err)
	}
	return estimate.Levels(resp.Levels).Normalize(), nil
}

// HealthCheck verifies the inference server is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.do(ctx, "health", http.MethodGet, "/health", nil); err != nil {
		return fmt.Errorf("pipeline health: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, body)
	})
	duration := time.Since(start)

	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues(pipelineLabel, endpoint, "error").Inc()
		c.countError(errorType(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	metrics.PipelineRequestsTotal.WithLabelValues(pipelineLabel, endpoint, "success").Inc()
	metrics.PipelineRequestDuration.WithLabelValues(pipelineLabel, endpoint).Observe(duration.Seconds())
	return raw, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Status: resp.StatusCode, Detail: extractDetail(data)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func (c *Client) countError(kind string) {
	metrics.PipelineErrorsTotal.WithLabelValues(pipelineLabel, kind).Inc()
}

func errorType(err error) string {
	var se *StatusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &se) && se.Status < http.StatusInternalServerError:
		return "rejected"
	case errors.As(err, &se):
		return "server_error"
	default:
		return "transport"
	}
}

// extractDetail reads the "detail" field of a JSON error body,
// falling back to the trimmed body text.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return strings.TrimSpace(string(body))
}
