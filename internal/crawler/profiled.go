package crawler

import (
	"context"

	"github.com/nao1215/wordcrawl/internal/profiler"
)

// Operation names used in profiling records.
const (
	OpCrawl = "Crawl"
	OpClaim = "Claim"
)

// WithProfiling wraps c so that every Crawl call is timed by prof.
// A nil prof returns c unchanged.
func WithProfiling(c Crawler, prof *profiler.Profiler) Crawler {
	if prof == nil {
		return c
	}
	return &profiledCrawler{
		next: c,
		it:   prof.Interceptor(c, OpCrawl),
	}
}

type profiledCrawler struct {
	next Crawler
	it   *profiler.Interceptor
}

func (p *profiledCrawler) Crawl(ctx context.Context, req Request) (*Result, error) {
	return profiler.Call(p.it, OpCrawl, func() (*Result, error) {
		return p.next.Crawl(ctx, req)
	})
}

// ProfileVisitedSet wraps v so that Claim is timed by prof.
// Contains and Len are forwarded without measurement.
// A nil prof returns v unchanged.
func ProfileVisitedSet(v VisitedSet, prof *profiler.Profiler) VisitedSet {
	if prof == nil {
		return v
	}
	return &profiledVisitedSet{
		next: v,
		it:   prof.Interceptor(v, OpClaim),
	}
}

type profiledVisitedSet struct {
	next VisitedSet
	it   *profiler.Interceptor
}

func (p *profiledVisitedSet) Claim(url string) bool {
	claimed, _ := profiler.Call(p.it, OpClaim, func() (bool, error) {
		return p.next.Claim(url), nil
	})
	return claimed
}

func (p *profiledVisitedSet) Contains(url string) bool {
	return p.next.Contains(url)
}

func (p *profiledVisitedSet) Len() int {
	return p.next.Len()
}
