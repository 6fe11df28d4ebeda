package report

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONWriter outputs the crawl result as JSON:
//
//	{"wordCounts":{"gopher":12,"go":9},"urlsVisited":4}
//
// wordCounts holds the popular words in ranking order.
//
// Design decision: We encode wordCounts by hand rather than marshaling a
// map because encoding/json sorts map keys, which would lose the ranking.
// Keys and values still go through encoding/json for escaping.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the popular words and the visited count.
func (w *JSONWriter) Write(report *Report) (int, error) {
	data, err := w.encode(report)
	if err != nil {
		return 0, err
	}

	if w.indent {
		var buf bytes.Buffer
		// json.Indent keeps key order.
		if err := json.Indent(&buf, data, w.indentPrefix, w.indentString); err != nil {
			return 0, err
		}
		data = buf.Bytes()
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// encode builds the compact JSON document.
func (w *JSONWriter) encode(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"wordCounts":{`)
	for i, wc := range report.PopularWords() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(wc.Word)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(wc.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteString(`},"urlsVisited":`)
	visited, err := json.Marshal(report.urlsVisited())
	if err != nil {
		return nil, err
	}
	buf.Write(visited)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
