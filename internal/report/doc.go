// Package report renders crawl results and profiling measurements.
//
// This package contains writers for different output formats:
//   - JSONWriter: the popular words and visited count, in ranking order
//   - TextWriter: the profiling report, one line per profiled operation
//   - MarkdownWriter: both, as tables for sharing
//
// Design decision: We separate report writing from the crawl and profiler
// packages so that adding an output format never touches the crawler.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
