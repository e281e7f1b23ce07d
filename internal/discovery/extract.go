package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

// urlPattern matches URL candidates in a line of text. The candidate runs
// from a scheme marker to the first character that cannot appear in a
// URL; trailing punctuation is cleaned up afterwards by trimTrailing.
var urlPattern = regexp.MustCompile("https?://[^\\s<>\"'`]+")

// trailingPunct are characters stripped unconditionally from the end of
// a candidate. They end sentences far more often than URLs.
const trailingPunct = ".,;:!?"

// Extractor pulls URL strings out of text lines.
//
// Design decision: Extractor is constructed once and shared by
// reference. It holds only immutable state (the compiled pattern), so
// concurrent use from parallel file scans is safe and no per-call
// compilation cost is paid.
type Extractor struct {
	pattern *regexp.Regexp
}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{pattern: urlPattern}
}

// ExtractLine returns all URLs found in a single line, in order of
// appearance. Candidates that do not survive trimming and parsing are
// dropped.
func (e *Extractor) ExtractLine(line string) []string {
	matches := e.pattern.FindAllString(line, -1)
	if matches == nil {
		return nil
	}

	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		cleaned := trimTrailing(m)
		if isValidURL(cleaned) {
			urls = append(urls, cleaned)
		}
	}

	if len(urls) == 0 {
		return nil
	}
	return urls
}

// trimTrailing removes punctuation from the end of a candidate that
// belongs to the surrounding prose rather than the URL. Sentence
// punctuation is always stripped. Closing brackets are stripped only
// when unbalanced, so "https://x.test/a_(b)" keeps its parenthesis
// while "(https://x.test/a)" loses the stray one.
func trimTrailing(candidate string) string {
	for len(candidate) > 0 {
		last := candidate[len(candidate)-1]

		if strings.IndexByte(trailingPunct, last) >= 0 {
			candidate = candidate[:len(candidate)-1]
			continue
		}

		var open byte
		switch last {
		case ')':
			open = '('
		case ']':
			open = '['
		case '}':
			open = '{'
		default:
			return candidate
		}

		if strings.Count(candidate, string(open)) >= strings.Count(candidate, string(last)) {
			return candidate
		}
		candidate = candidate[:len(candidate)-1]
	}
	return candidate
}

// isValidURL reports whether a cleaned candidate is a usable absolute
// http or https URL.
func isValidURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Host != ""
}
