package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Classification is the terminal category of a validation outcome.
//
// Design decision: We use iota-based constants rather than string
// constants for type safety, and keep the set closed so aggregation,
// report writers, and the cache can switch over all variants. The
// String method supplies the stable wire names.
type Classification int

const (
	// ClassSuccess means the URL answered with an acceptable status.
	// This includes statuses the user explicitly allowed, and timeouts
	// when timeouts are configured as acceptable.
	ClassSuccess Classification = iota

	// ClassHTTPError means the URL answered with an HTTP status that is
	// neither 2xx nor explicitly allowed. The status code is recorded on
	// the outcome.
	ClassHTTPError

	// ClassTimeout means no response arrived within the per-request
	// timeout on the final attempt.
	ClassTimeout

	// ClassConnectionError means the request failed below HTTP: DNS
	// resolution, connection refusal, TLS negotiation, and similar.
	ClassConnectionError

	// ClassExcluded means the URL matched an exclude pattern and was
	// never dispatched to the network.
	ClassExcluded

	// ClassAllowed means the URL matched an allowlist substring and was
	// never dispatched to the network.
	ClassAllowed
)

// classificationNames maps enum values to their wire form. The wire form
// is stable: it appears in JSON reports and in the result cache.
var classificationNames = map[Classification]string{
	ClassSuccess:         "success",
	ClassHTTPError:       "http_error",
	ClassTimeout:         "timeout",
	ClassConnectionError: "connection_error",
	ClassExcluded:        "excluded",
	ClassAllowed:         "allowed",
}

// String returns the stable wire name of the classification.
func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseClassification converts a wire name back to a Classification.
// It is the inverse of String and is used when loading cached outcomes.
func ParseClassification(s string) (Classification, error) {
	for class, name := range classificationNames {
		if name == s {
			return class, nil
		}
	}
	return 0, fmt.Errorf("unknown classification %q", s)
}

// MarshalJSON encodes the classification as its wire name.
func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a classification from its wire name.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClassification(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Outcome is the terminal result of validating one distinct URL.
// Exactly one Outcome exists per distinct URL in a run; retries never
// surface intermediate results.
type Outcome struct {
	// URL is the exact URL string the outcome belongs to.
	URL string `json:"url"`

	// Class is the terminal classification.
	Class Classification `json:"class"`

	// StatusCode is the HTTP status of the final attempt, or 0 when no
	// response was received (timeouts, connection errors, skips).
	StatusCode int `json:"status_code,omitempty"`

	// Detail is a short human-readable description: the connection error
	// text, the matched exclude pattern, or the allowlist entry.
	Detail string `json:"detail,omitempty"`

	// Attempts is the number of requests issued, counting the first
	// attempt and every retry. Zero for URLs that were never dispatched.
	Attempts int `json:"attempts"`

	// TimedOut records that the final attempt hit the per-request
	// timeout. It stays true when timeouts are configured as acceptable
	// and the class is ClassSuccess, so reports can show the masking.
	TimedOut bool `json:"timed_out,omitempty"`

	// Cached is true when the outcome was served from the result cache
	// without issuing a request in this run.
	Cached bool `json:"cached,omitempty"`

	// Duration is the total wall time spent on this URL across all
	// attempts, excluding time spent waiting in the dispatch queue.
	// Serialized as whole milliseconds by MarshalJSON.
	Duration time.Duration `json:"-"`
}

// MarshalJSON encodes the outcome with the duration in whole
// milliseconds instead of time.Duration's nanosecond integer.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	return json.Marshal(struct {
		alias
		DurationMS int64 `json:"duration_ms"`
	}{alias(o), o.Duration.Milliseconds()})
}

// IsIssue reports whether the outcome counts against the run. Excluded
// and allowed URLs are skips, and successes are fine; everything else
// is an issue.
func (o Outcome) IsIssue() bool {
	switch o.Class {
	case ClassSuccess, ClassExcluded, ClassAllowed:
		return false
	case ClassHTTPError, ClassTimeout, ClassConnectionError:
		return true
	default:
		return true
	}
}

// Checked reports whether the outcome entered the failure-rate
// denominator. URLs skipped before dispatch are not checked.
func (o Outcome) Checked() bool {
	return o.Class != ClassExcluded && o.Class != ClassAllowed
}
