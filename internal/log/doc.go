// Package log provides slog handlers for urlup.
//
// The package wraps a standard slog handler with credential redaction.
// A URL checker logs URLs constantly, and URLs are a common place for
// credentials to hide: userinfo components and API keys or tokens in
// query strings. The RedactHandler masks those before a record reaches
// the underlying handler, so accidental secret leakage into CI logs is
// prevented at one choke point.
package log
