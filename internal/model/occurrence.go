package model

import (
	"fmt"
	"sort"
)

// Occurrence is a single textual appearance of a URL in a scanned file.
// One Occurrence is produced per appearance, so the same URL string may
// appear in many Occurrences. Line numbers are 1-based.
type Occurrence struct {
	// URL is the exact URL string as it appeared in the file.
	URL string `json:"url"`

	// File is the path of the file the URL was found in, as supplied
	// by the caller. No path resolution is performed.
	File string `json:"file"`

	// Line is the 1-based line number of the appearance.
	Line int `json:"line"`
}

// Location returns the occurrence position in "file:line" form.
func (o Occurrence) Location() string {
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}

// DistinctURL is a unique URL string together with the location where it
// was first seen and the number of times it appeared overall.
//
// Design decision: Uniqueness is decided on the exact string rather than
// a normalized form because:
// 1. Servers may treat URLs differing in case or trailing slash differently
// 2. Exact matching keeps dedup a pure map lookup
// 3. The reported URL is always the string that actually appears in the file
type DistinctURL struct {
	// URL is the exact, unnormalized URL string.
	URL string `json:"url"`

	// FirstSeen is the occurrence that introduced this URL.
	FirstSeen Occurrence `json:"first_seen"`

	// Occurrences is how many times the URL appeared across all
	// scanned files. Always at least 1.
	Occurrences int `json:"occurrences"`
}

// Dedup reduces an occurrence stream to the distinct URL set. The first
// occurrence of each URL wins FirstSeen; every occurrence increments the
// count. The returned slice is in first-seen order, so downstream
// processing and reports are deterministic regardless of how the URLs
// are later checked.
func Dedup(occurrences []Occurrence) []DistinctURL {
	index := make(map[string]int, len(occurrences))
	distinct := make([]DistinctURL, 0, len(occurrences))

	for _, occ := range occurrences {
		if i, ok := index[occ.URL]; ok {
			distinct[i].Occurrences++
			continue
		}
		index[occ.URL] = len(distinct)
		distinct = append(distinct, DistinctURL{
			URL:         occ.URL,
			FirstSeen:   occ,
			Occurrences: 1,
		})
	}

	return distinct
}

// SortByFirstSeen orders distinct URLs by the file and line where each
// was first encountered. Ties on file and line keep the URL string as a
// final tiebreaker so the order is total.
func SortByFirstSeen(urls []DistinctURL) {
	sort.SliceStable(urls, func(i, j int) bool {
		a, b := urls[i].FirstSeen, urls[j].FirstSeen
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return urls[i].URL < urls[j].URL
	})
}
