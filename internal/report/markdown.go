package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/urlup/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for CI job summaries and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeIssues(md, report)
	w.writeFileErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("urlup Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Checked At", report.CheckedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
			{"Files Scanned", strconv.Itoa(report.FilesScanned)},
			{"URLs Found", strconv.Itoa(report.TotalOccurrences)},
			{"URLs Checked", strconv.Itoa(report.UniqueChecked)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.Report) string {
	if report.Partial {
		return "⚠️ Interrupted (partial results)"
	}
	if report.Verdict == model.VerdictFail {
		return "❌ Fail"
	}
	return "✅ Pass"
}

// writeSummary writes the per-classification counts.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Summary")
	md.PlainText("")

	counts := report.Counts
	md.Table(markdown.TableSet{
		Header: []string{"Classification", "Count"},
		Rows: [][]string{
			{"✅ Success", strconv.Itoa(counts.Success)},
			{"🚫 HTTP Errors", strconv.Itoa(counts.HTTPError)},
			{"⏳ Timeouts", strconv.Itoa(counts.Timeout)},
			{"🔌 Connection Errors", strconv.Itoa(counts.ConnectionError)},
			{"⏭️ Excluded", strconv.Itoa(counts.Excluded)},
			{"🟢 Allowlisted", strconv.Itoa(counts.Allowed)},
			{"**Total**", "**" + strconv.Itoa(counts.Total()) + "**"},
		},
	})
	md.PlainText("")

	// Add pie chart if there are issues
	if report.HasIssues() {
		w.writePieChart(md, report)
	}

	// Add alert based on verdict
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the issue distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Distribution"),
		piechart.WithShowData(true),
	)

	counts := report.Counts
	if counts.HTTPError > 0 {
		chart.LabelAndIntValue("HTTP Errors", uint64(counts.HTTPError))
	}
	if counts.Timeout > 0 {
		chart.LabelAndIntValue("Timeouts", uint64(counts.Timeout))
	}
	if counts.ConnectionError > 0 {
		chart.LabelAndIntValue("Connection Errors", uint64(counts.ConnectionError))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the verdict.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.Verdict == model.VerdictFail:
		md.Cautionf(
			"Failure rate %.1f%% exceeds the %.1f%% threshold. %d of %d checked URLs failed.",
			report.FailureRate, report.Threshold, len(report.Issues), report.UniqueChecked,
		)
	case report.HasIssues():
		md.Warningf(
			"%d issue(s) found. Failure rate %.1f%% stays within the %.1f%% threshold.",
			len(report.Issues), report.FailureRate, report.Threshold,
		)
	default:
		md.Tip("All checked URLs are reachable.")
	}
	md.PlainText("")
}

// writeIssues writes the issue table in first-seen order.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.Report) {
	md.H2("Issues")
	md.PlainText("")

	if !report.HasIssues() {
		md.PlainText("No issues found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Issues))
	for i, issue := range report.Issues {
		o := issue.Outcome

		status := "-"
		if o.StatusCode > 0 {
			status = strconv.Itoa(o.StatusCode)
		}
		detail := o.Detail
		if detail == "" {
			detail = o.Class.String()
		}

		rows[i] = []string{
			"`" + truncateString(o.URL, 60) + "`",
			status,
			truncateString(detail, 50),
			truncateString(issue.URL.FirstSeen.Location(), 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Detail", "Location"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFileErrors writes files that could not be read, when any.
func (w *MarkdownWriter) writeFileErrors(md *markdown.Markdown, report *model.Report) {
	if len(report.FileErrors) == 0 {
		return
	}

	md.H2("File Errors")
	md.PlainText("")

	rows := make([][]string, len(report.FileErrors))
	for i, fe := range report.FileErrors {
		rows[i] = []string{"`" + fe.File + "`", truncateString(fe.Err, 60)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"File", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [urlup](https://github.com/nao1215/urlup)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
