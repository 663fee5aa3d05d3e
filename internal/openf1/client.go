// Package openf1 fetches and caches records from the OpenF1 public API.
package openf1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
)

const (
	// DefaultBaseURL is the public OpenF1 v1 API.
	DefaultBaseURL = "https://api.openf1.org/v1"
	requestTimeout = 15 * time.Second
	maxBodySize    = 16 << 20 // 16 MB; lap and position payloads are large
	userAgent      = "f1dash/1.0 (+https://github.com/Jorginton/f1-streamlit-dashboard)"
)

var (
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("openf1: rate limited")
	// ErrNotFound indicates the endpoint or the requested records do not exist.
	ErrNotFound = errors.New("openf1: not found")
)

// Getter returns the raw JSON body for an endpoint and parameter set.
type Getter interface {
	Get(ctx context.Context, endpoint string, params Params) ([]byte, error)
}

// Client performs uncached GET requests against the OpenF1 API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a client for baseURL. An empty baseURL selects the public API.
func NewClient(baseURL string, logger *slog.Logger, metrics *observability.Metrics) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = observability.Discard()
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: requestTimeout,
		logger:  logger,
		metrics: metrics,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL builds the request address for endpoint and params.
func (c *Client) URL(endpoint string, params Params) string {
	u := c.baseURL + "/" + strings.Trim(endpoint, "/")
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Get performs a GET request and returns the response body, which is
// guaranteed to be a JSON array.
func (c *Client) Get(ctx context.Context, endpoint string, params Params) ([]byte, error) {
	start := time.Now()
	body, err := c.get(ctx, endpoint, params)
	c.metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	c.metrics.Requests.WithLabelValues(endpoint, outcome(ctx, err)).Inc()
	if err != nil {
		c.logger.Debug("openf1 request failed", "endpoint", endpoint, "params", params.Encode(), "error", err)
		return nil, err
	}
	c.logger.Debug("openf1 request", "endpoint", endpoint, "params", params.Encode(),
		"bytes", len(body), "duration", time.Since(start))
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params Params) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(endpoint, params), nil)
	if err != nil {
		return nil, fmt.Errorf("openf1: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openf1: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openf1: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("openf1: reading response: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("openf1: response exceeds %d bytes", maxBodySize)
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, errors.New("openf1: malformed JSON response")
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("openf1: expected a JSON array")
	}
	return trimmed, nil
}

func outcome(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return "success"
	case ctx.Err() != nil:
		return "canceled"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
