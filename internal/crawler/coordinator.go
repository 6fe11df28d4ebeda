package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/wordcrawl/internal/clock"
	"github.com/nao1215/wordcrawl/internal/metrics"
	"github.com/nao1215/wordcrawl/internal/parser"
	"github.com/nao1215/wordcrawl/internal/pattern"
	"github.com/nao1215/wordcrawl/internal/profiler"
	"golang.org/x/sync/errgroup"
)

// Crawler runs crawls. Coordinator is the implementation; the interface
// exists so that decorators such as WithProfiling can wrap it.
type Crawler interface {
	Crawl(ctx context.Context, req Request) (*Result, error)
}

// Request describes one crawl.
type Request struct {
	// Seeds are the start URLs. Each becomes the root of its own task tree.
	Seeds []string

	// MaxDepth is the link depth given to every root.
	// 1 fetches the seeds only, 0 fetches nothing.
	MaxDepth int

	// Deadline is the instant after which no new fetch starts.
	// When zero it is computed as now + Timeout at crawl start.
	Deadline time.Time

	// Timeout is used only when Deadline is zero.
	Timeout time.Duration

	// IgnorePatterns are regular expressions matched against whole URLs.
	IgnorePatterns []string

	// Parallelism is the number of tasks allowed to work at the same time.
	Parallelism int
}

// Coordinator runs a Request as a forest of Tasks over a bounded pool.
// A Coordinator holds no per-crawl state and may run several crawls at once.
type Coordinator struct {
	parser   parser.PageParser
	clock    clock.Clock
	logger   *slog.Logger
	profiler *profiler.Profiler
	metrics  *metrics.Metrics
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithClock sets the time source used for deadlines.
func WithClock(c clock.Clock) CoordinatorOption {
	return func(co *Coordinator) {
		co.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(co *Coordinator) {
		co.logger = logger
	}
}

// WithProfiler times every visited-set claim of every crawl.
func WithProfiler(p *profiler.Profiler) CoordinatorOption {
	return func(co *Coordinator) {
		co.profiler = p
	}
}

// WithMetrics sets the collectors updated during crawls.
func WithMetrics(m *metrics.Metrics) CoordinatorOption {
	return func(co *Coordinator) {
		co.metrics = m
	}
}

// NewCoordinator creates a Coordinator that fetches pages with p.
func NewCoordinator(p parser.PageParser, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		parser: p,
		clock:  clock.System{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Crawl validates req, crawls every seed and returns the combined result.
//
// Configuration errors are returned before anything is fetched. Failures of
// individual pages are logged and never fail the crawl. Crawl returns only
// after every task has finished; the result is a snapshot taken after that.
func (c *Coordinator) Crawl(ctx context.Context, req Request) (*Result, error) {
	if req.Parallelism <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidParallelism, req.Parallelism)
	}
	if req.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, req.MaxDepth)
	}
	if req.Deadline.IsZero() && req.Timeout <= 0 {
		return nil, ErrInvalidDeadline
	}
	ignore, err := pattern.Compile(req.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIgnorePattern, err)
	}

	deadline := req.Deadline
	if deadline.IsZero() {
		deadline = c.clock.Now().Add(req.Timeout)
	}

	state := NewState(ProfileVisitedSet(NewVisitedSet(), c.profiler))
	root := Task{
		Depth:    req.MaxDepth,
		Deadline: deadline,
		Ignore:   ignore,
		State:    state,
		Parser:   c.parser,
		Clock:    c.clock,
		Pool:     NewPool(req.Parallelism),
		Logger:   c.logger,
		Metrics:  c.metrics,
	}

	c.logger.Info("crawl started",
		"seeds", len(req.Seeds),
		"max_depth", req.MaxDepth,
		"parallelism", req.Parallelism,
		"deadline", deadline)

	var g errgroup.Group
	for _, seed := range req.Seeds {
		task := root
		task.URL = seed
		g.Go(func() error {
			task.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	result := state.Result()
	c.logger.Info("crawl finished",
		"urls_visited", result.URLsVisited,
		"distinct_words", len(result.WordCounts))
	return result, nil
}
