package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Verdict is the final pass or fail decision of a run.
type Verdict int

const (
	// VerdictPass means the failure rate stayed within the configured
	// threshold. A run can pass with recorded issues.
	VerdictPass Verdict = iota

	// VerdictFail means the failure rate exceeded the threshold.
	VerdictFail
)

// String returns "pass" or "fail".
func (v Verdict) String() string {
	if v == VerdictFail {
		return "fail"
	}
	return "pass"
}

// MarshalJSON encodes the verdict as its string form.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a verdict from its string form.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "pass":
		*v = VerdictPass
	case "fail":
		*v = VerdictFail
	default:
		return fmt.Errorf("unknown verdict %q", s)
	}
	return nil
}

// Issue pairs a distinct URL with its failing outcome. Issues carry the
// first-seen location so reports can point at a concrete file and line.
type Issue struct {
	// URL is the distinct URL the issue belongs to.
	URL DistinctURL `json:"url"`

	// Outcome is the terminal validation result.
	Outcome Outcome `json:"outcome"`
}

// FileError records a file that could not be read during discovery.
// Failed files contribute zero occurrences and never abort the run.
type FileError struct {
	// File is the path that failed.
	File string `json:"file"`

	// Err is the error text.
	Err string `json:"error"`
}

// Counts summarizes outcomes by classification.
type Counts struct {
	Success         int `json:"success"`
	HTTPError       int `json:"http_error"`
	Timeout         int `json:"timeout"`
	ConnectionError int `json:"connection_error"`
	Excluded        int `json:"excluded"`
	Allowed         int `json:"allowed"`
}

// Total returns the number of outcomes across all classifications.
func (c Counts) Total() int {
	return c.Success + c.HTTPError + c.Timeout + c.ConnectionError + c.Excluded + c.Allowed
}

// Report is the aggregated result of a complete run. It is built once
// after validation finishes and is immutable afterwards; report writers
// only read it.
type Report struct {
	// TotalOccurrences is how many URL appearances discovery found,
	// counting repeats.
	TotalOccurrences int `json:"total_occurrences"`

	// UniqueChecked is how many distinct URLs entered the failure-rate
	// denominator: distinct URLs minus excluded and allowlisted ones.
	UniqueChecked int `json:"unique_checked"`

	// FilesScanned is how many files discovery processed successfully.
	FilesScanned int `json:"files_scanned"`

	// FileErrors lists files that could not be read.
	FileErrors []FileError `json:"file_errors,omitempty"`

	// Counts summarizes all outcomes by classification.
	Counts Counts `json:"counts"`

	// Outcomes holds every terminal outcome, in first-seen order of the
	// corresponding distinct URL.
	Outcomes []Outcome `json:"outcomes,omitempty"`

	// Issues holds the failing outcomes with their locations, ordered by
	// first-seen file then line. The order does not depend on the order
	// in which checks completed.
	Issues []Issue `json:"issues"`

	// FailureRate is issues divided by UniqueChecked, as a percentage.
	// Zero when nothing was checked.
	FailureRate float64 `json:"failure_rate"`

	// Threshold is the failure-rate percentage the verdict was compared
	// against.
	Threshold float64 `json:"failure_threshold"`

	// Verdict is the final decision against the configured threshold.
	Verdict Verdict `json:"verdict"`

	// Partial is true when the run was interrupted and the report covers
	// only the URLs that completed before cancellation.
	Partial bool `json:"partial,omitempty"`

	// CheckedAt is when the run started.
	CheckedAt time.Time `json:"checked_at"`

	// Duration is the wall time of the whole run.
	// Serialized as whole milliseconds by MarshalJSON.
	Duration time.Duration `json:"-"`
}

// MarshalJSON encodes the report with the duration in milliseconds.
func (r Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		alias
		DurationMS int64 `json:"duration_ms"`
	}{alias(r), r.Duration.Milliseconds()})
}

// HasIssues reports whether any outcome counted as an issue.
func (r *Report) HasIssues() bool {
	return len(r.Issues) > 0
}
