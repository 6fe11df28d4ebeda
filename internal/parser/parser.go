package parser

import (
	"context"
	"errors"

	"github.com/nao1215/wordcrawl/internal/profiler"
)

// Parser errors.
var (
	// ErrUnexpectedStatus is returned when the server answers with a 4xx or 5xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxyAddress is returned when the proxy address is not in "host:port" form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrFileRedirect is returned when a non-file page redirects to a file: URL.
	ErrFileRedirect = errors.New("redirect to file URL refused")
)

// PageParser turns a URL into the words and links found on that page.
// Implementations must be safe for concurrent use.
type PageParser interface {
	// Parse fetches and parses url. A failure is always reported through
	// the error; a non-nil Result is never partial.
	Parse(ctx context.Context, url string) (*Result, error)
}

// Result is what one page contributes to a crawl.
type Result struct {
	// WordCounts maps each word to the number of times it appears on the page.
	WordCounts map[string]int

	// Links are the outbound links in document order. Duplicates are kept.
	Links []string
}

// OpParse is the name under which Parse calls are profiled.
const OpParse = "Parse"

// WithProfiling wraps p so that every Parse call is timed by prof.
// A nil prof returns p unchanged.
func WithProfiling(p PageParser, prof *profiler.Profiler) PageParser {
	if prof == nil {
		return p
	}
	return &profiledParser{
		next: p,
		it:   prof.Interceptor(p, OpParse),
	}
}

// profiledParser is the PageParser decorator built by WithProfiling.
type profiledParser struct {
	next PageParser
	it   *profiler.Interceptor
}

// Parse forwards to the wrapped parser through the interceptor.
func (p *profiledParser) Parse(ctx context.Context, url string) (*Result, error) {
	return profiler.Call(p.it, OpParse, func() (*Result, error) {
		return p.next.Parse(ctx, url)
	})
}
