package crawler

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/nao1215/wordcrawl/internal/clock"
	"github.com/nao1215/wordcrawl/internal/metrics"
	"github.com/nao1215/wordcrawl/internal/parser"
	"github.com/nao1215/wordcrawl/internal/pattern"
	"golang.org/x/sync/errgroup"
)

// Task visits one URL and, recursively, the pages it links to.
// A Task is a value: children are copies with a new URL and one less depth.
type Task struct {
	// URL is the page this task visits.
	URL string

	// Depth is the remaining link depth. A task at depth 0 fetches nothing.
	Depth int

	// Deadline is the instant after which no new fetch starts.
	Deadline time.Time

	// Ignore holds the URL patterns that are never fetched.
	Ignore []*regexp.Regexp

	// State is shared by every task of the crawl.
	State *State

	// Parser fetches and parses pages.
	Parser parser.PageParser

	// Clock is the time source for deadline checks.
	Clock clock.Clock

	// Pool bounds concurrently working tasks. Nil means unbounded.
	Pool *Pool

	// Logger receives per-page diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Run visits the task's URL and then runs one child per outbound link,
// returning only when every descendant has returned.
// Failures are confined to the page they happen on and never reported to
// the caller.
func (t Task) Run(ctx context.Context) {
	links := t.visit(ctx)
	if len(links) == 0 {
		return
	}

	var g errgroup.Group
	for _, link := range links {
		child := t
		child.URL = link
		child.Depth = t.Depth - 1
		g.Go(func() error {
			child.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

// visit does the work of a single page while holding a pool slot and
// returns the links to follow. The slot is released before the caller
// forks the children.
func (t Task) visit(ctx context.Context) []string {
	if err := t.Pool.Acquire(ctx); err != nil {
		t.Metrics.Skipped(stopReason(ctx))
		return nil
	}
	defer t.Pool.Release()

	logger := t.logger()

	if t.Depth <= 0 {
		t.Metrics.Skipped(metrics.ReasonDepth)
		return nil
	}
	if !t.Clock.Now().Before(t.Deadline) {
		t.Metrics.Skipped(metrics.ReasonDeadline)
		return nil
	}
	if ctx.Err() != nil {
		t.Metrics.Skipped(stopReason(ctx))
		return nil
	}
	if pattern.MatchAny(t.Ignore, t.URL) {
		logger.Debug("skipping ignored url", "url", t.URL)
		t.Metrics.Skipped(metrics.ReasonIgnored)
		return nil
	}
	if t.State.Visited.Contains(t.URL) {
		t.Metrics.Skipped(metrics.ReasonVisited)
		return nil
	}
	if !t.State.Visited.Claim(t.URL) {
		t.Metrics.ClaimConflict()
		t.Metrics.Skipped(metrics.ReasonVisited)
		return nil
	}

	start := t.Clock.Now()
	page, err := t.Parser.Parse(ctx, t.URL)
	if err != nil {
		logger.Debug("failed to parse page", "url", t.URL, "error", err)
		t.Metrics.FetchFailed()
		return nil
	}
	t.Metrics.PageFetched(t.Clock.Now().Sub(start))

	t.State.Words.Merge(page.WordCounts)
	logger.Debug("visited page",
		"url", t.URL,
		"depth", t.Depth,
		"words", len(page.WordCounts),
		"links", len(page.Links))

	return page.Links
}

// stopReason labels a task abandoned because ctx is done. A context
// deadline counts as "deadline"; any other cancellation, such as an
// interrupt, counts as "cancelled".
func stopReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return metrics.ReasonDeadline
	}
	return metrics.ReasonCancelled
}

func (t Task) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}
