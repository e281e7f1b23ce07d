package validator

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/urlup/internal/model"
)

// maxBackoffDelay caps the exponential backoff. With up to 20 retries
// allowed, an uncapped doubling of even a modest base delay would stall
// a worker for hours.
const maxBackoffDelay = 5 * time.Minute

// transient reports whether the outcome may change on a retry.
// Timeouts, connection-level failures, and 5xx responses are worth
// retrying. A 4xx is the server's final word, and a success is done.
func transient(o model.Outcome) bool {
	switch o.Class {
	case model.ClassTimeout, model.ClassConnectionError:
		return true
	case model.ClassHTTPError:
		return o.StatusCode >= http.StatusInternalServerError
	case model.ClassSuccess, model.ClassExcluded, model.ClassAllowed:
		return false
	default:
		return false
	}
}

// backoffDelay returns the wait before retry number attempt+1.
// The base delay doubles with each retry: base, 2x base, 4x base.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoffDelay || delay < 0 {
			return maxBackoffDelay
		}
	}
	return delay
}

// isTimeout reports whether the request error was a timeout rather
// than some other connection-level failure. The HTTP client surfaces
// its per-request timeout as a net.Error with Timeout() true.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// errDetail extracts a short description from a request error.
// The outer *url.Error repeats the full URL, which the outcome already
// carries, so we unwrap to the underlying cause.
func errDetail(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
