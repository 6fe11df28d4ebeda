package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TextWriter outputs the profiling report as plain text:
//
//	Run at Mon, 02 Jan 2006 15:04:05 MST
//	*crawler.Coordinator#Crawl took 0m 7s 12ms
//	*parser.HTMLParser#Parse took 0m 41s 305ms
//
// One line per profiled operation with its total time, followed by a
// one-line result summary and a blank line so that appended runs stay
// readable.
type TextWriter struct {
	baseWriter

	// verbose adds the call count, mean and max per operation.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables per-operation call statistics.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the profiling report.
func (w *TextWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	sb.WriteString("Run at " + report.RunAt.Format(time.RFC1123) + "\n")
	for _, s := range report.Profile {
		fmt.Fprintf(&sb, "%s took %s", s.Key(), FormatDuration(s.Total))
		if w.verbose {
			fmt.Fprintf(&sb, " (%d calls, mean %s, max %s)",
				s.Calls, FormatDuration(s.Mean()), FormatDuration(s.Max))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Visited %d URLs, %d distinct words\n", report.urlsVisited(), report.distinctWords())
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// FormatDuration renders d as "<minutes>m <seconds>s <millis>ms".
// Minutes are not capped at 60.
func FormatDuration(d time.Duration) string {
	minutes := d / time.Minute
	seconds := (d % time.Minute) / time.Second
	millis := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%dm %ds %dms", minutes, seconds, millis)
}
