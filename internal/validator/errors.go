package validator

import "errors"

var (
	// ErrNilConfig is returned when the validator is constructed without
	// a configuration.
	ErrNilConfig = errors.New("validator: config is nil")

	// ErrInvalidConcurrency is returned when the configured concurrency
	// is not positive. The worker pool cannot run without workers.
	ErrInvalidConcurrency = errors.New("validator: concurrency must be positive")

	// ErrInvalidBatchBounds is returned when the batch size bounds are
	// non-positive or inverted.
	ErrInvalidBatchBounds = errors.New("validator: invalid batch size bounds")
)
