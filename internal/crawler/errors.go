package crawler

import "errors"

// Configuration errors returned by Coordinator.Crawl before any work starts.
var (
	// ErrInvalidParallelism is returned when Request.Parallelism is not positive.
	ErrInvalidParallelism = errors.New("parallelism must be at least 1")

	// ErrInvalidDepth is returned when Request.MaxDepth is negative.
	ErrInvalidDepth = errors.New("max depth must not be negative")

	// ErrInvalidDeadline is returned when neither a deadline nor a positive timeout is given.
	ErrInvalidDeadline = errors.New("either a deadline or a positive timeout is required")

	// ErrInvalidIgnorePattern is returned when an ignore pattern is not a valid regular expression.
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")
)
