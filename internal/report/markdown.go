package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// pieChartWords is how many top words the pie chart shows.
const pieChartWords = 8

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result and the profiling report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeWords(md, report)
	w.writeProfile(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run At", report.RunAt.Format(time.RFC1123)},
			{"URLs Visited", strconv.Itoa(report.urlsVisited())},
			{"Distinct Words", strconv.Itoa(report.distinctWords())},
		},
	})
	md.PlainText("")
}

// writeWords writes the popular word ranking.
func (w *MarkdownWriter) writeWords(md *markdown.Markdown, report *Report) {
	md.H2("Popular Words")
	md.PlainText("")

	words := report.PopularWords()
	if len(words) == 0 {
		md.Note("No words were collected. Check the start pages and the ignore patterns.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(words))
	for i, wc := range words {
		rows = append(rows, []string{strconv.Itoa(i + 1), "`" + wc.Word + "`", strconv.Itoa(wc.Count)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Top Words"),
		piechart.WithShowData(true),
	)
	for _, wc := range words[:min(len(words), pieChartWords)] {
		chart.LabelAndIntValue(wc.Word, uint64(wc.Count)) //nolint:gosec // counts are positive
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeProfile writes one row per profiled operation.
func (w *MarkdownWriter) writeProfile(md *markdown.Markdown, report *Report) {
	md.H2("Profile")
	md.PlainText("")

	if len(report.Profile) == 0 {
		md.Tip("Nothing was profiled in this run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Profile))
	for _, s := range report.Profile {
		rows = append(rows, []string{
			"`" + s.Key() + "`",
			strconv.Itoa(s.Calls),
			FormatDuration(s.Total),
			FormatDuration(s.Mean()),
			FormatDuration(s.Max),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Operation", "Calls", "Total", "Mean", "Max"},
		Rows:   rows,
	})
	md.PlainText("")
}
