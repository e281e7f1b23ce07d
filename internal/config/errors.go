package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoFiles is returned when no file or directory argument was given.
	ErrNoFiles = errors.New("no files specified: provide at least one file or directory to scan")

	// ErrInvalidTimeout is returned when the timeout is zero, negative,
	// or implausibly large.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidConcurrency is returned when the worker count is not in
	// the accepted range.
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrInvalidRetryAttempts is returned when the retry count is
	// negative or above the cap.
	ErrInvalidRetryAttempts = errors.New("invalid retry attempts: must be between 0 and 20")

	// ErrInvalidRetryDelay is returned when the retry delay is negative.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrInvalidRateLimit is returned when the rate limit delay is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidStatusCode is returned when an allowed status code is
	// outside the valid HTTP range.
	ErrInvalidStatusCode = errors.New("invalid status code: must be between 100 and 599")

	// ErrInvalidThreshold is returned when the failure threshold is not
	// a percentage.
	ErrInvalidThreshold = errors.New("invalid failure threshold: must be between 0 and 100")

	// ErrInvalidFormat is returned for an unknown output format name.
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidProxy is returned when the proxy URL cannot be used.
	ErrInvalidProxy = errors.New("invalid proxy")

	// ErrInvalidCacheAge is returned when the cache is enabled with a
	// non-positive maximum age.
	ErrInvalidCacheAge = errors.New("invalid cache max age: must be positive")
)
