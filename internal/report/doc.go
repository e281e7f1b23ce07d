// Package report renders finished runs in the supported output formats.
//
// This package contains writers for different output formats:
//   - TextWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MinimalWriter: One issue per line for shell pipelines
//   - MarkdownWriter: Markdown output for CI job summaries
//
// Design decision: We separate report rendering from report data
// structures (which are in the model package) to follow the single
// responsibility principle. This allows adding new output formats
// without modifying the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
