package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/wordcrawl/internal/parser"
)

// Default configuration values.
const (
	// DefaultMaxDepth is the link depth given to every start page.
	// 1 fetches only the start pages themselves.
	DefaultMaxDepth = 10

	// DefaultTimeout is the wall-clock budget of one crawl. Once it has
	// elapsed no new page is fetched; pages already in flight finish.
	DefaultTimeout = 7 * time.Second

	// DefaultPopularWordCount is the number of words written to the result.
	DefaultPopularWordCount = 10

	// DefaultFetchTimeout bounds a single HTTP request.
	DefaultFetchTimeout = parser.DefaultFetchTimeout

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = parser.DefaultMaxBodySize

	// DefaultUserAgent identifies wordcrawl in HTTP requests.
	DefaultUserAgent = parser.DefaultUserAgent

	// AppName is the application name used for XDG directory paths.
	AppName = "wordcrawl"
)

// Environment variables that override configuration file values.
const (
	// EnvDBDir overrides the directory of the crawl history database.
	EnvDBDir = "WORDCRAWL_DB_DIR"

	// EnvUserAgent overrides the User-Agent header.
	EnvUserAgent = "WORDCRAWL_USER_AGENT"

	// EnvProxy overrides the SOCKS5 proxy address.
	EnvProxy = "WORDCRAWL_PROXY"
)

// Config holds all configuration options for a crawl.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in that order, and then passed down explicitly.
//
// Design decision: We use a single flat struct, as the number of options
// is small and every option is consumed by the crawl command.
type Config struct {
	// StartPages are the seed URLs of the crawl.
	StartPages []string

	// IgnoredURLs are regular expressions; a URL matching one in full is
	// never fetched and its links are never followed.
	IgnoredURLs []string

	// IgnoredWords are regular expressions; a word matching one in full is
	// not counted.
	IgnoredWords []string

	// Parallelism is the number of pages fetched at the same time.
	Parallelism int

	// MaxDepth is the maximum link depth. 0 fetches nothing.
	MaxDepth int

	// Timeout is the wall-clock budget of the whole crawl.
	Timeout time.Duration

	// PopularWordCount is the number of most frequent words in the result.
	PopularWordCount int

	// ResultPath is where the JSON result is written. Empty means stdout.
	ResultPath string

	// ProfileOutputPath is the file the profiling report is appended to.
	// Empty means stderr.
	ProfileOutputPath string

	// MarkdownReport writes the result and profile summary as Markdown
	// instead of JSON and plain text.
	MarkdownReport bool

	// FetchTimeout bounds a single HTTP request.
	FetchTimeout time.Duration

	// MaxBodySize is the maximum number of bytes read per page.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// MetricsAddr, when set, serves Prometheus metrics on this address
	// while the crawl runs.
	MetricsAddr string

	// ConfigFilePath is the configuration file to load. If empty, .wordcrawl
	// is searched in the current directory and then the home directory.
	ConfigFilePath string

	// DBDir is the directory of the crawl history database.
	// Defaults to the XDG data directory (~/.local/share/wordcrawl on Linux).
	DBDir string

	// SaveToDB stores the run and its profile records in the database.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero, and this also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Parallelism:      runtime.NumCPU(),
		MaxDepth:         DefaultMaxDepth,
		Timeout:          DefaultTimeout,
		PopularWordCount: DefaultPopularWordCount,
		FetchTimeout:     DefaultFetchTimeout,
		MaxBodySize:      DefaultMaxBodySize,
		UserAgent:        DefaultUserAgent,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
	}
}

// XDGDataDir returns the XDG data directory for wordcrawl.
// On Linux: ~/.local/share/wordcrawl
// On macOS: ~/Library/Application Support/wordcrawl
// On Windows: %LOCALAPPDATA%\wordcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate once, after all sources are merged and
// before anything is fetched, so a bad value fails fast with a clear message.
func (c *Config) Validate() error {
	if len(c.StartPages) == 0 {
		return ErrNoStartPages
	}
	if c.Parallelism <= 0 {
		return ErrInvalidParallelism
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PopularWordCount < 0 {
		return ErrInvalidPopularWordCount
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
