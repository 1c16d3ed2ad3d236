package analyze

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	backoffBase   = time.Second
	backoffCap    = 30 * time.Second
	maxRetryAfter = time.Minute
)

// RetryableError is a backend failure worth another attempt: rate limiting
// or a server-side error. RetryAfter is the server's requested delay, if any.
type RetryableError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether err, or anything it wraps, is a *RetryableError.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the delay before retry n (0-indexed): exponential from one
// second, capped at 30s, plus up to 50% jitter.
func Backoff(attempt int) time.Duration {
	base := min(backoffBase<<min(attempt, 5), backoffCap)
	return base + time.Duration(rand.Int64N(int64(base)/2))
}

// retryDelay is the wait before the next attempt after err.
func retryDelay(backoff func(int) time.Duration, attempt int, err error) time.Duration {
	d := backoff(attempt)
	var retryErr *RetryableError
	if errors.As(err, &retryErr) && retryErr.RetryAfter > d {
		d = min(retryErr.RetryAfter, maxRetryAfter)
	}
	return d
}

// checkStatus maps a non-200 backend response to an error.
func checkStatus(provider string, resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return fmt.Errorf("%s api status %d: %s", provider, resp.StatusCode, truncate(string(body), 200))
	}
}

// parseRetryAfter reads the delay-seconds form of Retry-After; HTTP dates
// and garbage yield 0.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
