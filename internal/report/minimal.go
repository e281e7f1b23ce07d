package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/urlup/internal/model"
)

// MinimalWriter outputs one issue per line with no decoration.
// Each line is the HTTP status code or error text followed by the URL,
// which pipes cleanly into grep and awk in CI scripts.
type MinimalWriter struct {
	baseWriter
}

// NewMinimalWriter creates a MinimalWriter that outputs to the given writer.
func NewMinimalWriter(output io.Writer) *MinimalWriter {
	return &MinimalWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the issue list, one line per issue. A passing run with
// no issues produces no output at all.
func (w *MinimalWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	for _, issue := range report.Issues {
		o := issue.Outcome
		switch {
		case o.StatusCode > 0:
			fmt.Fprintf(&sb, "%d %s\n", o.StatusCode, o.URL)
		case o.Detail != "":
			fmt.Fprintf(&sb, "%s %s\n", o.Detail, o.URL)
		default:
			fmt.Fprintf(&sb, "ERROR %s\n", o.URL)
		}
	}

	return w.output.Write([]byte(sb.String()))
}
