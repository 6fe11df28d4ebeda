package report

import (
	"io"
	"time"

	"github.com/nao1215/wordcrawl/internal/crawler"
	"github.com/nao1215/wordcrawl/internal/profiler"
)

// Report is everything a writer may render about one crawl run.
type Report struct {
	// RunAt is when the crawl started.
	RunAt time.Time

	// Result is the crawl outcome.
	Result *crawler.Result

	// PopularWordCount limits how many words are listed.
	// Zero or less lists every word.
	PopularWordCount int

	// Profile holds the aggregated profiling measurements of the run.
	Profile []profiler.Summary
}

// PopularWords returns the ranked words the report lists.
func (r *Report) PopularWords() []crawler.WordCount {
	if r.Result == nil {
		return nil
	}
	return r.Result.PopularWords(r.PopularWordCount)
}

// urlsVisited returns the visited count, or zero without a result.
func (r *Report) urlsVisited() int {
	if r.Result == nil {
		return 0
	}
	return r.Result.URLsVisited
}

// distinctWords returns the number of distinct words, or zero without a result.
func (r *Report) distinctWords() int {
	if r.Result == nil {
		return 0
	}
	return len(r.Result.WordCounts)
}

// Writer defines the interface for report output.
// Implementations write crawl reports in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
