package aggregate

import (
	"time"

	"github.com/nao1215/urlup/internal/model"
)

// Run carries everything a finished validation run produced. It is
// consumed once by BuildReport.
type Run struct {
	// Distinct is the deduplicated URL set in first-seen order.
	Distinct []model.DistinctURL

	// Outcomes holds one terminal outcome per validated distinct URL.
	// On interrupted runs it covers only the URLs that completed.
	Outcomes []model.Outcome

	// FilesScanned is how many files discovery read successfully.
	FilesScanned int

	// FileErrors lists files discovery could not read.
	FileErrors []model.FileError

	// Threshold is the failure-rate percentage above which the run
	// fails.
	Threshold float64

	// Partial marks a run that was interrupted before every distinct
	// URL completed.
	Partial bool

	// CheckedAt is when the run started.
	CheckedAt time.Time

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// BuildReport derives the aggregated report from a run.
//
// Issues are the outcomes that count against the run, ordered by the
// file and line where each URL was first seen. The failure rate is the
// issue share of checked URLs as a percentage; excluded and allowlisted
// URLs are skips and stay out of the denominator. The verdict fails
// only when the rate exceeds the threshold, so a threshold of zero
// fails on any issue while a passing run may still carry issues.
func BuildReport(run Run) *model.Report {
	report := &model.Report{
		TotalOccurrences: countOccurrences(run.Distinct),
		FilesScanned:     run.FilesScanned,
		FileErrors:       run.FileErrors,
		Counts:           countByClass(run.Outcomes),
		Outcomes:         run.Outcomes,
		Issues:           collectIssues(run.Distinct, run.Outcomes),
		Threshold:        run.Threshold,
		Partial:          run.Partial,
		CheckedAt:        run.CheckedAt,
		Duration:         run.Duration,
	}

	checked := 0
	for _, o := range run.Outcomes {
		if o.Checked() {
			checked++
		}
	}
	report.UniqueChecked = checked

	if checked > 0 {
		report.FailureRate = float64(len(report.Issues)) / float64(checked) * 100
	}
	if report.FailureRate > run.Threshold {
		report.Verdict = model.VerdictFail
	}

	return report
}

// countOccurrences sums the appearance counts of the distinct set,
// recovering the total occurrence count from discovery.
func countOccurrences(distinct []model.DistinctURL) int {
	total := 0
	for _, d := range distinct {
		total += d.Occurrences
	}
	return total
}

// countByClass tallies outcomes per classification.
func countByClass(outcomes []model.Outcome) model.Counts {
	var counts model.Counts
	for _, o := range outcomes {
		switch o.Class {
		case model.ClassSuccess:
			counts.Success++
		case model.ClassHTTPError:
			counts.HTTPError++
		case model.ClassTimeout:
			counts.Timeout++
		case model.ClassConnectionError:
			counts.ConnectionError++
		case model.ClassExcluded:
			counts.Excluded++
		case model.ClassAllowed:
			counts.Allowed++
		}
	}
	return counts
}

// collectIssues pairs each failing outcome with the distinct URL it
// belongs to and orders the pairs by first-seen location. URLs that
// never completed in an interrupted run are simply absent.
func collectIssues(distinct []model.DistinctURL, outcomes []model.Outcome) []model.Issue {
	byURL := make(map[string]model.Outcome, len(outcomes))
	for _, o := range outcomes {
		byURL[o.URL] = o
	}

	failing := make([]model.DistinctURL, 0)
	for _, d := range distinct {
		if o, ok := byURL[d.URL]; ok && o.IsIssue() {
			failing = append(failing, d)
		}
	}
	model.SortByFirstSeen(failing)

	issues := make([]model.Issue, 0, len(failing))
	for _, d := range failing {
		issues = append(issues, model.Issue{URL: d, Outcome: byURL[d.URL]})
	}
	return issues
}
