package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/urlup/internal/model"
)

// lineWidth is the width of section rules in the text report.
const lineWidth = 70

// TextWriter outputs human-readable text reports.
// Issues are grouped by error class so a long run reads as a handful
// of sections instead of an interleaved list.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// quiet trims the output to the issue sections only.
	quiet bool

	// verbose adds per-URL attempt counts and durations.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithQuiet trims the output to the issue sections, dropping the
// header, summary, and verdict footer.
func WithQuiet(quiet bool) TextWriterOption {
	return func(w *TextWriter) {
		w.quiet = quiet
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		quiet:      false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the report in human-readable format.
func (w *TextWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	if !w.quiet {
		w.writeHeader(&sb, report)
		w.writeSummary(&sb, report)
		w.writeFileErrors(&sb, report)
	}

	w.writeIssues(&sb, report)

	if !w.quiet {
		w.writeFooter(&sb, report)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *TextWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	sb.WriteString("                             URLUP REPORT\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Checked At:    %s\n", report.CheckedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:      %s\n", report.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Files Scanned: %d\n", report.FilesScanned))
	sb.WriteString(fmt.Sprintf("URLs Found:    %d (%d unique)\n", report.TotalOccurrences, report.Counts.Total()))
	sb.WriteString(fmt.Sprintf("URLs Checked:  %d\n", report.UniqueChecked))

	if report.Partial {
		sb.WriteString("Status:        INTERRUPTED (partial results)\n")
	} else {
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the per-classification counts.
func (w *TextWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString("RESULT SUMMARY\n")
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")

	counts := report.Counts
	sb.WriteString(fmt.Sprintf("  SUCCESS:           %d\n", counts.Success))
	sb.WriteString(fmt.Sprintf("  HTTP ERRORS:       %d\n", counts.HTTPError))
	sb.WriteString(fmt.Sprintf("  TIMEOUTS:          %d\n", counts.Timeout))
	sb.WriteString(fmt.Sprintf("  CONNECTION ERRORS: %d\n", counts.ConnectionError))
	sb.WriteString(fmt.Sprintf("  EXCLUDED:          %d\n", counts.Excluded))
	sb.WriteString(fmt.Sprintf("  ALLOWLISTED:       %d\n", counts.Allowed))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:             %d URLs\n", counts.Total()))
	sb.WriteString("\n")
}

// writeFileErrors writes files that could not be read, when any.
func (w *TextWriter) writeFileErrors(sb *strings.Builder, report *model.Report) {
	if len(report.FileErrors) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString("FILE ERRORS\n")
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")

	for _, fe := range report.FileErrors {
		sb.WriteString(fmt.Sprintf("  * %s\n", fe.File))
		sb.WriteString(fmt.Sprintf("    Error: %s\n", fe.Err))
	}
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by error class.
func (w *TextWriter) writeIssues(sb *strings.Builder, report *model.Report) {
	if !report.HasIssues() {
		return
	}

	if !w.quiet {
		sb.WriteString(strings.Repeat("-", lineWidth))
		sb.WriteString("\n")
		sb.WriteString("ISSUES\n")
		sb.WriteString(strings.Repeat("-", lineWidth))
		sb.WriteString("\n\n")
	}

	for _, group := range groupIssues(report.Issues) {
		if len(group.items) == 0 {
			continue
		}
		w.writeIssueGroup(sb, group)
	}
}

// writeIssueGroup writes the issues of one error class.
func (w *TextWriter) writeIssueGroup(sb *strings.Builder, group issueGroup) {
	sb.WriteString(fmt.Sprintf("[%s] %s\n", group.tag, group.title))

	for _, issue := range group.items {
		o := issue.Outcome
		sb.WriteString(fmt.Sprintf("  * %s\n", o.URL))
		if o.StatusCode > 0 {
			sb.WriteString(fmt.Sprintf("    Status: %d\n", o.StatusCode))
		}
		if o.Detail != "" {
			sb.WriteString(fmt.Sprintf("    Error: %s\n", o.Detail))
		}
		sb.WriteString(fmt.Sprintf("    Location: %s\n", issue.URL.FirstSeen.Location()))
		if issue.URL.Occurrences > 1 {
			sb.WriteString(fmt.Sprintf("    Occurrences: %d\n", issue.URL.Occurrences))
		}
		if w.verbose {
			sb.WriteString(fmt.Sprintf("    Attempts: %d (%s)\n", o.Attempts, o.Duration.Round(time.Millisecond)))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the verdict with the failure-rate arithmetic.
func (w *TextWriter) writeFooter(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")

	issues := len(report.Issues)
	switch {
	case report.Verdict == model.VerdictFail:
		sb.WriteString(fmt.Sprintf("FAIL: failure rate %.1f%% exceeds threshold %.1f%% (%d/%d URLs failed)\n",
			report.FailureRate, report.Threshold, issues, report.UniqueChecked))
	case issues > 0:
		sb.WriteString(fmt.Sprintf("PASS: failure rate %.1f%% within threshold %.1f%% (%d/%d URLs failed)\n",
			report.FailureRate, report.Threshold, issues, report.UniqueChecked))
	default:
		sb.WriteString("PASS: no issues found\n")
	}

	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
}

// issueGroup is one error-class section of the issue listing.
type issueGroup struct {
	tag   string
	title string
	items []model.Issue
}

// groupIssues buckets issues into the fixed section order: client
// errors, server errors, redirects, other HTTP statuses, timeouts,
// connection errors. Within a group the first-seen order is kept.
func groupIssues(issues []model.Issue) []issueGroup {
	var client, server, redirect, other, timeouts, network []model.Issue

	for _, issue := range issues {
		switch issue.Outcome.Class {
		case model.ClassTimeout:
			timeouts = append(timeouts, issue)
		case model.ClassConnectionError:
			network = append(network, issue)
		default:
			switch code := issue.Outcome.StatusCode; {
			case code >= 300 && code <= 399:
				redirect = append(redirect, issue)
			case code >= 400 && code <= 499:
				client = append(client, issue)
			case code >= 500 && code <= 599:
				server = append(server, issue)
			default:
				other = append(other, issue)
			}
		}
	}

	return []issueGroup{
		{tag: "4xx", title: "CLIENT ERRORS", items: client},
		{tag: "5xx", title: "SERVER ERRORS", items: server},
		{tag: "3xx", title: "REDIRECTS", items: redirect},
		{tag: "???", title: "OTHER HTTP ISSUES", items: other},
		{tag: "t/o", title: "TIMEOUTS", items: timeouts},
		{tag: "net", title: "CONNECTION ERRORS", items: network},
	}
}
