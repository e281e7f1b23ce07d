package validator

import (
	"regexp"
	"strings"

	"github.com/nao1215/urlup/internal/model"
)

// Filter settles URLs that must never reach the network: exclude
// patterns and allowlist substrings. Exclude patterns are checked
// first, so a URL matching both is excluded.
type Filter struct {
	excludes  []*regexp.Regexp
	allowlist []string
}

// NewFilter creates a Filter from compiled exclude patterns and
// allowlist substrings. Either slice may be empty or nil.
func NewFilter(excludes []*regexp.Regexp, allowlist []string) *Filter {
	return &Filter{
		excludes:  excludes,
		allowlist: allowlist,
	}
}

// Classify reports whether the URL is settled without a network call.
// The returned outcome carries the matched pattern or substring in its
// detail so reports can show why the URL was skipped.
func (f *Filter) Classify(url string) (model.Outcome, bool) {
	for _, re := range f.excludes {
		if re.MatchString(url) {
			return model.Outcome{
				URL:    url,
				Class:  model.ClassExcluded,
				Detail: re.String(),
			}, true
		}
	}

	for _, substr := range f.allowlist {
		if strings.Contains(url, substr) {
			return model.Outcome{
				URL:    url,
				Class:  model.ClassAllowed,
				Detail: substr,
			}, true
		}
	}

	return model.Outcome{}, false
}
