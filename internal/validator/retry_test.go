package validator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/nao1215/urlup/internal/model"
)

// TestTransient tests which outcomes are worth retrying.
func TestTransient(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		outcome  model.Outcome
		expected bool
	}{
		{
			name:     "timeout is transient",
			outcome:  model.Outcome{Class: model.ClassTimeout},
			expected: true,
		},
		{
			name:     "connection error is transient",
			outcome:  model.Outcome{Class: model.ClassConnectionError},
			expected: true,
		},
		{
			name:     "500 is transient",
			outcome:  model.Outcome{Class: model.ClassHTTPError, StatusCode: 500},
			expected: true,
		},
		{
			name:     "503 is transient",
			outcome:  model.Outcome{Class: model.ClassHTTPError, StatusCode: 503},
			expected: true,
		},
		{
			name:     "404 is permanent",
			outcome:  model.Outcome{Class: model.ClassHTTPError, StatusCode: 404},
			expected: false,
		},
		{
			name:     "429 is permanent",
			outcome:  model.Outcome{Class: model.ClassHTTPError, StatusCode: 429},
			expected: false,
		},
		{
			name:     "success is terminal",
			outcome:  model.Outcome{Class: model.ClassSuccess, StatusCode: 200},
			expected: false,
		},
		{
			name:     "masked timeout is terminal",
			outcome:  model.Outcome{Class: model.ClassSuccess, TimedOut: true},
			expected: false,
		},
		{
			name:     "excluded is terminal",
			outcome:  model.Outcome{Class: model.ClassExcluded},
			expected: false,
		},
		{
			name:     "allowed is terminal",
			outcome:  model.Outcome{Class: model.ClassAllowed},
			expected: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := transient(tc.outcome); got != tc.expected {
				t.Errorf("transient(%v) = %v, expected %v", tc.outcome.Class, got, tc.expected)
			}
		})
	}
}

// TestBackoffDelay tests exponential backoff computation.
func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		base     time.Duration
		attempt  int
		expected time.Duration
	}{
		{
			name:     "first retry waits the base delay",
			base:     time.Second,
			attempt:  0,
			expected: time.Second,
		},
		{
			name:     "second retry doubles",
			base:     time.Second,
			attempt:  1,
			expected: 2 * time.Second,
		},
		{
			name:     "third retry doubles again",
			base:     time.Second,
			attempt:  2,
			expected: 4 * time.Second,
		},
		{
			name:     "zero base means no wait",
			base:     0,
			attempt:  5,
			expected: 0,
		},
		{
			name:     "negative base means no wait",
			base:     -time.Second,
			attempt:  3,
			expected: 0,
		},
		{
			name:     "large attempt count caps out",
			base:     time.Second,
			attempt:  20,
			expected: maxBackoffDelay,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := backoffDelay(tc.base, tc.attempt); got != tc.expected {
				t.Errorf("backoffDelay(%v, %d) = %v, expected %v", tc.base, tc.attempt, got, tc.expected)
			}
		})
	}
}

// timeoutError mimics the net.Error a timed-out request surfaces.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// TestIsTimeout tests timeout detection on request errors.
func TestIsTimeout(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "net error with timeout",
			err:      timeoutError{},
			expected: true,
		},
		{
			name:     "wrapped net timeout",
			err:      &url.Error{Op: "Get", URL: "https://example.com", Err: timeoutError{}},
			expected: true,
		},
		{
			name:     "context deadline exceeded",
			err:      fmt.Errorf("request: %w", context.DeadlineExceeded),
			expected: true,
		},
		{
			name:     "plain connection refused",
			err:      errors.New("connection refused"),
			expected: false,
		},
		{
			name:     "context cancelled",
			err:      context.Canceled,
			expected: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isTimeout(tc.err); got != tc.expected {
				t.Errorf("isTimeout(%v) = %v, expected %v", tc.err, got, tc.expected)
			}
		})
	}
}

// TestErrDetail tests extraction of the underlying cause from request
// errors.
func TestErrDetail(t *testing.T) {
	t.Parallel()

	t.Run("unwraps url.Error", func(t *testing.T) {
		t.Parallel()

		err := &url.Error{
			Op:  "Get",
			URL: "https://example.com/secret?token=abc",
			Err: errors.New("connection refused"),
		}
		if got := errDetail(err); got != "connection refused" {
			t.Errorf("expected underlying cause, got %q", got)
		}
	})

	t.Run("plain error passes through", func(t *testing.T) {
		t.Parallel()

		err := errors.New("no such host")
		if got := errDetail(err); got != "no such host" {
			t.Errorf("expected error text, got %q", got)
		}
	})
}
