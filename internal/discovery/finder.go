package discovery

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/urlup/internal/model"
)

const (
	// schemeMarker is the cheap per-line prefilter. A line that does not
	// contain it cannot contain an http or https URL, so the regex stage
	// is skipped for it entirely.
	schemeMarker = "http"

	// defaultMatchCapacity is the initial allocation for matched lines
	// per file, before the extension heuristic refines it.
	defaultMatchCapacity = 20

	// defaultURLsPerMatch estimates URLs per matched line for file types
	// without a specific multiplier.
	defaultURLsPerMatch = 2

	// minURLCapacity is the floor for the per-file result allocation.
	minURLCapacity = 4

	// binarySniffLen is how many leading bytes are inspected for a NUL
	// byte to decide a file is binary and should be skipped.
	binarySniffLen = 8000
)

// urlsPerMatch maps file extensions to the expected number of URLs per
// matched line. Markup-heavy formats tend to pack several links on one
// line. These are allocation tuning values, not correctness gates.
var urlsPerMatch = map[string]int{
	".md":       2,
	".markdown": 2,
	".html":     3,
	".htm":      3,
	".txt":      1,
	".rst":      1,
	".json":     2,
	".xml":      2,
}

// Finder scans file contents for URL occurrences.
//
// Design decision: The Finder takes an Extractor at construction rather
// than creating one per call. The extractor is immutable and shared by
// reference across the parallel per-file scans.
type Finder struct {
	extractor *Extractor

	// parallelism bounds concurrent file scans. Defaults to the CPU
	// core count.
	parallelism int
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithParallelism sets how many files are scanned concurrently.
func WithParallelism(n int) FinderOption {
	return func(f *Finder) {
		if n > 0 {
			f.parallelism = n
		}
	}
}

// NewFinder creates a Finder using the given extractor.
func NewFinder(extractor *Extractor, opts ...FinderOption) *Finder {
	f := &Finder{
		extractor:   extractor,
		parallelism: runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Find scans one file's content and returns its occurrences in line
// order. Line numbers are 1-based.
func (f *Finder) Find(content, path string) []model.Occurrence {
	type lineMatch struct {
		text string
		line int
	}

	// Stage one: collect lines that can contain a URL at all.
	matches := make([]lineMatch, 0, defaultMatchCapacity)
	line := 0
	for len(content) > 0 {
		line++
		text := content
		if i := strings.IndexByte(content, '\n'); i >= 0 {
			text = content[:i]
			content = content[i+1:]
		} else {
			content = ""
		}
		if strings.Contains(text, schemeMarker) {
			matches = append(matches, lineMatch{text: text, line: line})
		}
	}

	if len(matches) == 0 {
		return nil
	}

	// Stage two: run the extractor over matched lines only. The result
	// slice is pre-sized by the file-type heuristic to avoid growth on
	// link-dense files.
	occurrences := make([]model.Occurrence, 0, estimateURLCapacity(path, len(matches)))
	for _, m := range matches {
		for _, u := range f.extractor.ExtractLine(m.text) {
			occurrences = append(occurrences, model.Occurrence{
				URL:  u,
				File: path,
				Line: m.line,
			})
		}
	}

	return occurrences
}

// FindFiles reads and scans the given files concurrently. Occurrences
// are returned in file order, then line order, so output does not
// depend on scan scheduling. Unreadable files produce a FileError and
// zero occurrences, binary-looking files are skipped quietly, and
// neither ever fails the whole scan. The returned count is the number
// of files read successfully.
func (f *Finder) FindFiles(ctx context.Context, paths []string) ([]model.Occurrence, []model.FileError, int) {
	perFile := make([][]model.Occurrence, len(paths))

	var mu sync.Mutex
	var fileErrors []model.FileError
	scanned := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			data, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("skipping unreadable file", slog.String("file", path), slog.String("error", err.Error()))
				mu.Lock()
				fileErrors = append(fileErrors, model.FileError{File: path, Err: err.Error()})
				mu.Unlock()
				return nil
			}

			var occ []model.Occurrence
			if isBinary(data) {
				slog.Debug("skipping binary file", slog.String("file", path))
			} else {
				occ = f.Find(string(data), path)
			}

			mu.Lock()
			perFile[i] = occ
			scanned++
			mu.Unlock()
			return nil
		})
	}

	// The only error workers return is context cancellation; a partial
	// result is still assembled below.
	_ = g.Wait()

	// Completion order varies between runs; report content must not.
	sort.Slice(fileErrors, func(i, j int) bool { return fileErrors[i].File < fileErrors[j].File })

	total := 0
	for i := range perFile {
		total += len(perFile[i])
	}

	occurrences := make([]model.Occurrence, 0, total)
	for _, occ := range perFile {
		occurrences = append(occurrences, occ...)
	}

	return occurrences, fileErrors, scanned
}

// estimateURLCapacity sizes the per-file occurrence slice from the
// number of matched lines and the file extension.
func estimateURLCapacity(path string, matchCount int) int {
	if matchCount == 0 {
		return 0
	}

	multiplier, ok := urlsPerMatch[strings.ToLower(filepath.Ext(path))]
	if !ok {
		multiplier = defaultURLsPerMatch
	}

	capacity := matchCount * multiplier
	if capacity < minURLCapacity {
		return minURLCapacity
	}
	return capacity
}

// isBinary reports whether data looks like a binary file. A NUL byte in
// the leading window is the same heuristic grep uses.
func isBinary(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}
