// Package client holds the HTTP clients for every upstream the pipeline reads from.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nfl_dashboard/aggregator/internal/metrics"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotConfigured is returned when an upstream has no credentials configured
	ErrNotConfigured = errors.New("upstream not configured")

	// ErrUnauthorized is returned on 401/403 responses
	ErrUnauthorized = errors.New("upstream rejected credentials")

	// ErrUnavailable is returned on network failures and non-2xx responses
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrMalformed is returned when a payload cannot be decoded into the expected shape
	ErrMalformed = errors.New("malformed upstream payload")
)

// Options configures the shared HTTP behaviour of an upstream client
type Options struct {
	Timeout            time.Duration
	MaxRetries         int
	RetryDelay         time.Duration
	Concurrency        int
	InsecureSkipVerify bool
	UserAgent          string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	if o.UserAgent == "" {
		o.UserAgent = "nfl-dashboard-aggregator/1.0"
	}
	return o
}

// baseClient performs requests with retry, backoff and a concurrency semaphore
type baseClient struct {
	name        string
	baseURL     string
	httpClient  *http.Client
	rateLimiter chan struct{}
	maxRetries  int
	retryDelay  time.Duration
	userAgent   string
}

func newBaseClient(name, baseURL string, opts Options) *baseClient {
	opts = opts.withDefaults()

	rateLimiter := make(chan struct{}, opts.Concurrency)
	for i := 0; i < opts.Concurrency; i++ {
		rateLimiter <- struct{}{}
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.InsecureSkipVerify {
		log.Warn().Str("upstream", name).Msg("TLS certificate verification disabled for upstream")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via UPSTREAM_INSECURE_SKIP_VERIFY
	}

	return &baseClient{
		name:        name,
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rateLimiter,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		userAgent:   opts.UserAgent,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}
}

type request struct {
	method  string
	rawURL  string
	params  url.Values
	headers map[string]string
	body    []byte
}

// do sends the request, retrying network errors and 429/5xx responses
// with exponential backoff.
func (c *baseClient) do(ctx context.Context, r request) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Debug().
				Str("upstream", c.name).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying upstream request after backoff")

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.name, ctx.Err())
			case <-time.After(backoff):
			}
		}

		body, retry, err := c.attempt(ctx, r, attempt)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *baseClient) attempt(ctx context.Context, r request, attempt int) ([]byte, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.name, ctx.Err())
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	var reqBody io.Reader
	if r.body != nil {
		reqBody = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.rawURL, reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	if len(r.params) > 0 {
		req.URL.RawQuery = r.params.Encode()
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	log.Debug().
		Str("upstream", c.name).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("attempt", attempt+1).
		Msg("Making upstream request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(c.name, "network_error", time.Since(start).Seconds())
		retry := ctx.Err() == nil
		return nil, retry, fmt.Errorf("%w: %s request failed: %w", ErrUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(c.name, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, true, fmt.Errorf("%w: failed to read %s response body: %w", ErrUnavailable, c.name, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, false, nil

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: %s returned status %d", ErrUnauthorized, c.name, resp.StatusCode)

	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		log.Warn().
			Str("upstream", c.name).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Msg("Received retryable upstream status")
		return nil, true, fmt.Errorf("%w: %s returned retryable status %d: %s", ErrUnavailable, c.name, resp.StatusCode, snippet(body))

	default:
		return nil, false, fmt.Errorf("%w: %s returned status %d: %s", ErrUnavailable, c.name, resp.StatusCode, snippet(body))
	}
}

// getJSON performs a GET against baseURL+path and decodes the JSON body into out
func (c *baseClient) getJSON(ctx context.Context, path string, params url.Values, headers map[string]string, out any) error {
	body, err := c.do(ctx, request{
		method:  http.MethodGet,
		rawURL:  c.baseURL + path,
		params:  params,
		headers: headers,
	})
	if err != nil {
		return err
	}
	return decode(c.name, body, out)
}

// postJSON sends in as a JSON body and decodes the JSON response into out
func (c *baseClient) postJSON(ctx context.Context, path string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", c.name, err)
	}

	body, err := c.do(ctx, request{
		method:  http.MethodPost,
		rawURL:  c.baseURL + path,
		headers: headers,
		body:    payload,
	})
	if err != nil {
		return err
	}
	return decode(c.name, body, out)
}

func decode(name string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
	}
	return nil
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// Reason classifies an upstream error for logs and fallback metrics
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
