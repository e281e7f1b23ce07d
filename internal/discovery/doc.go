// Package discovery finds URL occurrences in files.
//
// This package contains the following main pieces:
//   - Extractor: Pulls URL strings out of a line of text
//   - Finder: Scans file contents and emits model.Occurrence values
//   - ExpandPaths: Turns CLI path arguments into a concrete file list
//
// Scanning is two-staged: a cheap per-line substring check for "http"
// gates the regex extraction, so files without URLs cost little more
// than a read. Files that cannot be read yield zero occurrences and a
// recorded error; they never abort the run.
package discovery
