package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// sensitiveKeys contains attribute keys whose values are always masked
// wholesale. These carry credentials for the HTTP client or proxy.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
}

// sensitiveParams contains query parameter names whose values are
// masked inside logged URLs. Bare "key" is included deliberately: in a
// URL query it is almost always an API key, unlike in attribute names
// where it is usually benign.
var sensitiveParams = map[string]bool{
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"id_token":      true,
	"api_key":       true,
	"apikey":        true,
	"key":           true,
	"secret":        true,
	"client_secret": true,
	"password":      true,
	"passwd":        true,
	"auth":          true,
	"signature":     true,
	"sig":           true,
}

// sensitivePatterns matches values that are secrets regardless of the
// attribute key. Long hex strings are intentionally not matched: commit
// hashes and content digests appear in URLs all the time and are not
// secrets.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
}

// RedactHandler wraps an slog.Handler and masks credentials before
// records reach it. It masks whole values for sensitive attribute keys,
// and rewrites URL-shaped values to hide userinfo and sensitive query
// parameters while keeping the rest of the URL readable.
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, the current default handler is wrapped.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a handler with the given attributes added, masked.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(redacted)}
}

// WithGroup returns a handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr masks a single attribute, recursing into groups.
func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			redacted[i] = h.redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		v := a.Value.String()
		if isSensitiveValue(v) {
			return slog.String(a.Key, MaskValue)
		}
		if redacted := RedactURL(v); redacted != v {
			return slog.String(a.Key, redacted)
		}
	}

	return a
}

// isSensitiveValue reports whether a value matches a secret pattern.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// RedactURL masks credentials embedded in a URL string: the userinfo
// component and the values of sensitive query parameters. The rewrite
// is textual, so untouched parts of the URL keep their exact bytes and
// non-URL strings are returned unchanged.
func RedactURL(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return s
	}

	masked := s

	// Userinfo cannot contain a literal "@", so the first "@" after the
	// scheme separator ends it.
	if u.User != nil {
		if sep := strings.Index(masked, "://"); sep >= 0 {
			rest := masked[sep+3:]
			if at := strings.IndexByte(rest, '@'); at >= 0 {
				masked = masked[:sep+3] + MaskValue + rest[at:]
			}
		}
	}

	// The first "?" starts the query; RawQuery is its verbatim text up
	// to the fragment.
	if u.RawQuery != "" {
		if newQuery, changed := redactQuery(u.RawQuery); changed {
			if qi := strings.IndexByte(masked, '?'); qi >= 0 {
				masked = masked[:qi+1] + newQuery + masked[qi+1+len(u.RawQuery):]
			}
		}
	}

	return masked
}

// redactQuery masks the values of sensitive parameters in a raw query
// string, preserving parameter order and the encoding of everything it
// does not touch.
func redactQuery(rawQuery string) (string, bool) {
	changed := false
	parts := strings.Split(rawQuery, "&")
	for i, part := range parts {
		name, _, found := strings.Cut(part, "=")
		if !found || name == "" {
			continue
		}
		key, err := url.QueryUnescape(name)
		if err != nil {
			key = name
		}
		if sensitiveParams[strings.ToLower(key)] {
			parts[i] = name + "=" + MaskValue
			changed = true
		}
	}
	return strings.Join(parts, "&"), changed
}

// NewLogger creates a logger that writes redacted text records to w.
// Verbose switches the level to Debug; the default level is Warn so
// report output stays clean on stdout.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(NewRedactHandler(slog.NewTextHandler(w, opts)))
}
