package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These follow common link-checker conventions: generous per-request
// timeout, no retries unless asked for, and a strict zero failure
// threshold so CI fails on the first broken URL.
const (
	// DefaultTimeout is the per-request timeout. 30 seconds is enough
	// for slow documentation hosts without stalling CI runs for long
	// when a server is truly gone.
	DefaultTimeout = 30 * time.Second

	// MaxTimeout caps the per-request timeout at 24 hours. Anything
	// larger is almost certainly a unit mistake (milliseconds passed
	// as seconds).
	MaxTimeout = 24 * time.Hour

	// MaxConcurrency bounds the worker pool size. More workers than
	// this destabilizes the client host before it speeds anything up.
	MaxConcurrency = 1000

	// DefaultRetryAttempts is 0: a URL is tried once unless retries are
	// requested. Retries trade run time for resilience to flaky hosts.
	DefaultRetryAttempts = 0

	// MaxRetryAttempts caps retries. With exponential backoff, twenty
	// attempts already spans days of waiting.
	MaxRetryAttempts = 20

	// DefaultRetryDelay seeds the exponential backoff between retries.
	DefaultRetryDelay = 1000 * time.Millisecond

	// DefaultRateLimitDelay is the minimum spacing between any two
	// requests across all workers. Zero means no global rate limit.
	DefaultRateLimitDelay = 0 * time.Millisecond

	// DefaultFailureThreshold is the tolerated percentage of broken
	// URLs. Zero fails the run on any issue.
	DefaultFailureThreshold = 0.0

	// DefaultCacheMaxAge is how long a cached success is trusted before
	// the URL is checked again.
	DefaultCacheMaxAge = 24 * time.Hour

	// AppName is the application name used for XDG directory paths.
	AppName = "urlup"
)

// Output format names accepted by --format.
const (
	// FormatText is the human-readable terminal report.
	FormatText = "text"

	// FormatJSON is the machine-readable report for tool integration.
	FormatJSON = "json"

	// FormatMinimal prints one failing URL per line, nothing else.
	FormatMinimal = "minimal"

	// FormatMarkdown renders the report as GitHub Flavored Markdown.
	FormatMarkdown = "markdown"
)

// Formats lists every accepted output format.
var Formats = []string{FormatText, FormatJSON, FormatMinimal, FormatMarkdown}

// Config holds all configuration options for urlup.
// This struct is populated from CLI flags and an optional YAML config
// file, then passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested
// structs for simplicity. The number of options is manageable, and
// nesting would add complexity without significant benefit.
type Config struct {
	// Files is the list of files and directories to scan.
	// Must contain at least one entry.
	Files []string

	// Recursive enables walking directory arguments. Without it, a
	// directory argument is a usage error.
	Recursive bool

	// IncludeExtensions restricts scanning to files with the listed
	// extensions (with or without a leading dot). Empty means no filter.
	IncludeExtensions []string

	// Timeout is the timeout for each individual HTTP request attempt.
	// It bounds one attempt, not the whole run.
	Timeout time.Duration

	// Concurrency is the number of validation workers and therefore the
	// maximum number of in-flight requests. Defaults to the CPU count.
	Concurrency int

	// RetryAttempts is how many times a transiently failing URL is
	// retried after its first attempt.
	RetryAttempts int

	// RetryDelay seeds the exponential backoff between retries: the
	// first retry waits RetryDelay, the second twice that, and so on.
	RetryDelay time.Duration

	// RateLimitDelay is the minimum spacing between any two requests
	// across all workers. Zero disables global rate limiting.
	RateLimitDelay time.Duration

	// AllowTimeout treats request timeouts as acceptable outcomes
	// rather than issues.
	AllowTimeout bool

	// AllowedStatusCodes lists non-2xx statuses that count as success,
	// for example 403 for hosts that block automated clients.
	AllowedStatusCodes []int

	// AllowlistSubstrings skips URLs containing any of these substrings
	// without issuing a request.
	AllowlistSubstrings []string

	// ExcludePatterns skips URLs matching any of these regular
	// expressions without issuing a request.
	ExcludePatterns []string

	// UseHEAD switches requests from GET to HEAD. HEAD is cheaper but
	// some servers reject or mishandle it.
	UseHEAD bool

	// UserAgent is the User-Agent header sent with every request.
	// When empty, a default of "urlup/<version>" is used.
	UserAgent string

	// Proxy routes all requests through the given proxy URL.
	// Supported schemes: http, https, socks5.
	Proxy string

	// Insecure skips TLS certificate verification.
	Insecure bool

	// FailureThreshold is the maximum tolerated percentage of failing
	// URLs before the run's verdict is fail. Zero tolerates none.
	FailureThreshold float64

	// Format selects the report output format. One of Formats.
	Format string

	// Output is a file path to write the report to. Empty writes the
	// report to stdout.
	Output string

	// Quiet reduces the text report to issues only and hides progress.
	Quiet bool

	// Verbose enables debug logging.
	Verbose bool

	// NoProgress disables the progress display even on a terminal.
	NoProgress bool

	// CacheEnabled turns on the result cache: recent successes are
	// trusted without re-checking. Off by default so CI always
	// re-verifies; issues are never served from the cache either way.
	CacheEnabled bool

	// CacheMaxAge is how long a cached success stays fresh.
	CacheMaxAge time.Duration

	// CacheDir is the directory holding the cache database. Defaults to
	// the XDG cache directory for urlup.
	CacheDir string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .urlup.yml in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// NoConfig skips config file loading entirely.
	NoConfig bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeout, concurrency,
// cache age). This also serves as documentation of what the defaults
// are.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		Concurrency:      runtime.NumCPU(),
		RetryAttempts:    DefaultRetryAttempts,
		RetryDelay:       DefaultRetryDelay,
		RateLimitDelay:   DefaultRateLimitDelay,
		FailureThreshold: DefaultFailureThreshold,
		Format:           FormatText,
		CacheMaxAge:      DefaultCacheMaxAge,
		CacheDir:         XDGCacheDir(),
	}
}

// XDGCacheDir returns the XDG cache directory for urlup.
// On Linux: ~/.cache/urlup
// On macOS: ~/Library/Caches/urlup
// On Windows: %LOCALAPPDATA%\urlup\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// CompileExcludePatterns compiles the configured exclude patterns.
// An invalid pattern is a configuration error, reported before any
// scanning begins.
func (c *Config) CompileExcludePatterns() ([]*regexp.Regexp, error) {
	if len(c.ExcludePatterns) == 0 {
		return nil, nil
	}

	compiled := make([]*regexp.Regexp, 0, len(c.ExcludePatterns))
	for _, pattern := range c.ExcludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Files) == 0 {
		return ErrNoFiles
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Timeout > MaxTimeout {
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalidTimeout, c.Timeout, MaxTimeout)
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Concurrency > MaxConcurrency {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidConcurrency, c.Concurrency, MaxConcurrency)
	}

	if c.RetryAttempts < 0 || c.RetryAttempts > MaxRetryAttempts {
		return ErrInvalidRetryAttempts
	}

	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}

	if c.RateLimitDelay < 0 {
		return ErrInvalidRateLimit
	}

	for _, code := range c.AllowedStatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("%w: %d", ErrInvalidStatusCode, code)
		}
	}

	if c.FailureThreshold < 0 || c.FailureThreshold > 100 {
		return ErrInvalidThreshold
	}

	validFormat := false
	for _, f := range Formats {
		if c.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("%w: %q (expected one of text, json, minimal, markdown)", ErrInvalidFormat, c.Format)
	}

	if c.Proxy != "" {
		if err := validateProxy(c.Proxy); err != nil {
			return err
		}
	}

	if c.CacheEnabled && c.CacheMaxAge <= 0 {
		return ErrInvalidCacheAge
	}

	if _, err := c.CompileExcludePatterns(); err != nil {
		return err
	}

	return nil
}

// validateProxy checks that the proxy URL parses and uses a scheme the
// HTTP client can route through.
func validateProxy(proxy string) error {
	u, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}

	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("%w: scheme %q (expected http, https, or socks5)", ErrInvalidProxy, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidProxy)
	}

	return nil
}
