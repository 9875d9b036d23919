package sources_common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=mocks/http_status_handler.go . IHttpStatusHandler

// IHttpStatusHandler is an interface for handling HTTP request statuses
type IHttpStatusHandler interface {
	// OnRequest handles a request with its status result
	OnRequest(status string)
	// OnRetry handles retry events
	OnRetry()
}

// LatencyRecorder is implemented by status handlers that also observe request latency
type LatencyRecorder interface {
	RecordRequestLatency(operation string, duration time.Duration)
}

// Request statuses reported to IHttpStatusHandler
const (
	StatusSuccess     = "success"
	StatusFailed      = "error"
	StatusRateLimited = "rate_limited"
	StatusTimeout     = "timeout"
)

// ClientOptions configures the upstream HTTP client
type ClientOptions struct {
	LogPrefix         string
	ConnectionTimeout time.Duration // Timeout for establishing connection
	RequestTimeout    time.Duration // Per-call timeout including reading the response
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		LogPrefix:         "HTTP",
		ConnectionTimeout: 5 * time.Second,
		RequestTimeout:    8 * time.Second,
	}
}

// HTTPClient performs single upstream round-trips. Retries and rate limiting
// are layered on top by Fetcher.
type HTTPClient struct {
	Client        *http.Client
	Opts          ClientOptions
	StatusHandler IHttpStatusHandler
}

// NewHTTPClient creates a new upstream HTTP client
func NewHTTPClient(opts ClientOptions, handler IHttpStatusHandler) *HTTPClient {
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.ConnectionTimeout,
			}).DialContext,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		Client:        client,
		Opts:          opts,
		StatusHandler: handler,
	}
}

// Execute runs one request bounded by the per-call timeout and returns the body of a 200 response
func (c *HTTPClient) Execute(ctx context.Context, req *http.Request) ([]byte, time.Duration, error) {
	if c.Opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Opts.RequestTimeout)
		defer cancel()
	}
	req = req.WithContext(ctx)

	requestStart := time.Now()
	resp, err := c.Client.Do(req)
	requestDuration := time.Since(requestStart)
	c.recordLatency(req.URL.Path, requestDuration)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.onRequest(StatusTimeout)
		} else {
			c.onRequest(StatusFailed)
		}
		return nil, requestDuration, fmt.Errorf("request failed after %.2fs: %w", requestDuration.Seconds(), err)
	}
	defer resp.Body.Close()

	body, err := processResponse(resp)
	if err != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.onRequest(StatusRateLimited)
		} else {
			c.onRequest(StatusFailed)
		}
		log.Debugf("%s: %s %s failed after %.2fs: %v", c.Opts.LogPrefix, req.Method, req.URL.Path, requestDuration.Seconds(), err)
		return nil, requestDuration, err
	}

	c.onRequest(StatusSuccess)
	return body, requestDuration, nil
}

// ExecuteJSON runs req and decodes the response body into out
func (c *HTTPClient) ExecuteJSON(ctx context.Context, req *http.Request, out any) (time.Duration, error) {
	body, duration, err := c.Execute(ctx, req)
	if err != nil {
		return duration, err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return duration, fmt.Errorf("failed to decode response: %w", err)
	}
	return duration, nil
}

func (c *HTTPClient) onRequest(status string) {
	if c.StatusHandler != nil {
		c.StatusHandler.OnRequest(status)
	}
}

func (c *HTTPClient) recordLatency(path string, duration time.Duration) {
	if recorder, ok := c.StatusHandler.(LatencyRecorder); ok {
		recorder.RecordRequestLatency(operationOf(path), duration)
	}
}

// operationOf maps an upstream path to a bounded operation label
func operationOf(path string) string {
	if strings.Contains(path, "search") {
		return "search"
	}
	return "trending"
}

// maxErrorBody bounds how much of an error response is kept
const maxErrorBody = 512

// processResponse reads and processes the HTTP response
func processResponse(resp *http.Response) ([]byte, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
			Body:       string(body),
		}
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	return responseBody, nil
}
