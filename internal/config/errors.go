package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and tell the user exactly
// which option is wrong.
//
// Design decision: We use package-level sentinel errors so callers can use
// errors.Is() for programmatic handling while the messages stay readable.
var (
	// ErrNoStartPages is returned when no seed URL is given on the command
	// line or in the configuration file.
	ErrNoStartPages = errors.New("no start pages specified: provide URLs as arguments or set startPages in the config file")

	// ErrInvalidParallelism is returned when parallelism is not positive.
	ErrInvalidParallelism = errors.New("invalid parallelism: must be positive")

	// ErrInvalidMaxDepth is returned when the max depth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidTimeout is returned when the crawl timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPopularWordCount is returned when the popular word count is negative.
	ErrInvalidPopularWordCount = errors.New("invalid popular word count: must be non-negative")

	// ErrInvalidFetchTimeout is returned when the per-request timeout is not positive.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")
)
