package sources_common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrUpstream marks a failure talking to an upstream provider after retries were exhausted
var ErrUpstream = errors.New("upstream failure")

// StatusError is returned for non-200 upstream responses
type StatusError struct {
	StatusCode int
	RetryAfter string
	Body       string
}

func (e *StatusError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return fmt.Sprintf("rate limit exceeded (status %d), retry after %s: %s", e.StatusCode, e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether another attempt could succeed.
// Transport and decode errors are retried, as are 429 and 5xx gateway statuses.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return isRetryableStatus(statusErr.StatusCode)
	}
	return true
}

// isRetryableStatus determines if a given HTTP status code should trigger a retry
func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}

// RetryAfter returns the wait an upstream asked for through the Retry-After
// header of a StatusError, or 0 when err carries none. Both delta-seconds and
// HTTP-date forms are accepted.
func RetryAfter(err error) time.Duration {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return 0
	}

	value := strings.TrimSpace(statusErr.RetryAfter)
	if value == "" {
		return 0
	}
	if seconds, parseErr := strconv.Atoi(value); parseErr == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, parseErr := http.ParseTime(value); parseErr == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}
