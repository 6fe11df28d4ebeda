package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/crawler"
	"github.com/nao1215/wordcrawl/internal/database"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
// This command compares crawl runs stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare saved crawl runs",
		Long: `Compare shows how two saved crawl runs differ:
- The change in the number of URLs visited and distinct words
- The popular words of both runs with their counts
- Words that entered or left the popular word ranking

By default the latest run is compared with the run before it.
Use 'wordcrawl crawl' to crawl and save runs.

Examples:
  # Compare the latest two runs
  wordcrawl compare

  # List all saved runs
  wordcrawl compare --list

  # Compare run 7 with the run before it
  wordcrawl compare --run-id 7

  # Compare the latest run with run 3
  wordcrawl compare --with-run-id 3

  # Output comparison in JSON format
  wordcrawl compare --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List saved crawl runs")
	cmd.Flags().Int64P("run-id", "r", 0,
		"Run to inspect (default: the latest run)")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Run to compare with (default: the run before --run-id)")
	cmd.Flags().IntP("popular", "n", config.DefaultPopularWordCount,
		"Number of popular words compared")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := config.ApplyEnvironment(cfg, config.DefaultEnvFile); err != nil {
		return err
	}

	listRuns, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	popular, err := cmd.Flags().GetInt("popular")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if listRuns {
		return listCrawlRuns(ctx, db, out)
	}

	previous, current, err := selectRuns(ctx, db, runID, withRunID)
	if err != nil {
		return err
	}

	comparison := compareRuns(previous, current, popular)
	if jsonOutput {
		return outputComparisonJSON(out, comparison)
	}
	return outputComparisonText(out, comparison)
}

// listCrawlRuns lists every saved run, newest first.
func listCrawlRuns(ctx context.Context, db *database.CrawlDB, out io.Writer) error {
	runs, err := db.ListCrawlRuns(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list crawl runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl runs found in the database.")
		fmt.Fprintln(out, "\nUse 'wordcrawl crawl <url>' to crawl and save a run.")
		return nil
	}

	fmt.Fprintf(out, "Crawl runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-6s  %s\n", "ID", "Date", "Visited", "Depth", "Seeds")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8d  %-6d  %s\n",
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.URLsVisited,
			run.MaxDepth,
			strings.Join(run.Seeds, " "),
		)
	}

	fmt.Fprintln(out, "\nUse 'wordcrawl compare' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'wordcrawl compare --with-run-id <id>' to compare with a specific run.")

	return nil
}

// selectRuns picks the runs to compare. current defaults to the latest
// run and previous to the run saved just before current.
func selectRuns(ctx context.Context, db *database.CrawlDB, runID, withRunID int64) (previous, current *database.CrawlRun, err error) {
	runs, err := db.ListCrawlRuns(ctx, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil, errors.New("no crawl runs found (use 'wordcrawl crawl' to crawl and save a run)")
	}
	if len(runs) < 2 {
		return nil, nil, fmt.Errorf("at least 2 crawl runs are required for comparison (found %d)", len(runs))
	}

	currentIndex := 0
	if runID > 0 {
		currentIndex = slices.IndexFunc(runs, func(r *database.CrawlRun) bool { return r.ID == runID })
		if currentIndex < 0 {
			return nil, nil, fmt.Errorf("%w: id %d", database.ErrRunNotFound, runID)
		}
	}
	current = runs[currentIndex]

	if withRunID > 0 {
		if withRunID == current.ID {
			return nil, nil, fmt.Errorf("cannot compare run %d with itself", withRunID)
		}
		previous, err = db.GetCrawlRun(ctx, withRunID)
		if err != nil {
			return nil, nil, err
		}
		return previous, current, nil
	}

	if currentIndex+1 >= len(runs) {
		return nil, nil, fmt.Errorf("run %d is the oldest run; use --with-run-id to pick a run to compare with", current.ID)
	}
	return runs[currentIndex+1], current, nil
}

// ComparisonResult holds the result of comparing two crawl runs.
type ComparisonResult struct {
	// PreviousRun contains metadata about the earlier run.
	PreviousRun RunMetadata `json:"previous_run"`

	// CurrentRun contains metadata about the later run.
	CurrentRun RunMetadata `json:"current_run"`

	// URLsVisitedDelta is the change in the number of URLs visited.
	URLsVisitedDelta int `json:"urls_visited_delta"`

	// DistinctWordsDelta is the change in the number of distinct words.
	DistinctWordsDelta int `json:"distinct_words_delta"`

	// Words lists the popular words of either run, current ranking first.
	Words []WordChange `json:"words"`

	// NewPopularWords are popular in the current run only.
	NewPopularWords []string `json:"new_popular_words,omitempty"`

	// DroppedPopularWords were popular in the previous run only.
	DroppedPopularWords []string `json:"dropped_popular_words,omitempty"`
}

// RunMetadata contains metadata about a run for comparison display.
type RunMetadata struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Seeds         []string  `json:"seeds"`
	URLsVisited   int       `json:"urls_visited"`
	DistinctWords int       `json:"distinct_words"`
}

// WordChange is the count of one word in both runs.
type WordChange struct {
	Word     string `json:"word"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Delta    int    `json:"delta"`
}

func newRunMetadata(run *database.CrawlRun) RunMetadata {
	return RunMetadata{
		ID:            run.ID,
		Timestamp:     run.Timestamp,
		Seeds:         run.Seeds,
		URLsVisited:   run.URLsVisited,
		DistinctWords: len(run.WordCounts),
	}
}

// compareRuns compares the n most popular words of two runs.
func compareRuns(previous, current *database.CrawlRun, n int) *ComparisonResult {
	result := &ComparisonResult{
		PreviousRun: newRunMetadata(previous),
		CurrentRun:  newRunMetadata(current),
	}
	result.URLsVisitedDelta = result.CurrentRun.URLsVisited - result.PreviousRun.URLsVisited
	result.DistinctWordsDelta = result.CurrentRun.DistinctWords - result.PreviousRun.DistinctWords

	previousTop := popularWords(previous, n)
	currentTop := popularWords(current, n)

	wordChange := func(word string) WordChange {
		p, c := previous.WordCounts[word], current.WordCounts[word]
		return WordChange{Word: word, Previous: p, Current: c, Delta: c - p}
	}

	for _, word := range currentTop {
		result.Words = append(result.Words, wordChange(word))
		if !slices.Contains(previousTop, word) {
			result.NewPopularWords = append(result.NewPopularWords, word)
		}
	}
	for _, word := range previousTop {
		if !slices.Contains(currentTop, word) {
			result.Words = append(result.Words, wordChange(word))
			result.DroppedPopularWords = append(result.DroppedPopularWords, word)
		}
	}

	return result
}

// popularWords returns the n most popular words of run, in ranking order.
func popularWords(run *database.CrawlRun, n int) []string {
	ranked := (&crawler.Result{WordCounts: run.WordCounts}).PopularWords(n)
	words := make([]string, 0, len(ranked))
	for _, wc := range ranked {
		words = append(words, wc.Word)
	}
	return words
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Comparing run #%d (%s) with run #%d (%s)\n\n",
		result.CurrentRun.ID,
		result.CurrentRun.Timestamp.Local().Format("2006-01-02 15:04:05"),
		result.PreviousRun.ID,
		result.PreviousRun.Timestamp.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(out, "  URLs visited:   %d -> %d (%s)\n",
		result.PreviousRun.URLsVisited, result.CurrentRun.URLsVisited, formatDelta(result.URLsVisitedDelta))
	fmt.Fprintf(out, "  Distinct words: %d -> %d (%s)\n",
		result.PreviousRun.DistinctWords, result.CurrentRun.DistinctWords, formatDelta(result.DistinctWordsDelta))

	if len(result.Words) > 0 {
		fmt.Fprintln(out, "\nPopular words:")
		fmt.Fprintf(out, "  %-20s  %8s  %8s  %8s\n", "Word", "Previous", "Current", "Change")
		fmt.Fprintln(out, "  "+strings.Repeat("-", 50))
		for _, w := range result.Words {
			fmt.Fprintf(out, "  %-20s  %8d  %8d  %8s\n", w.Word, w.Previous, w.Current, formatDelta(w.Delta))
		}
	}

	if len(result.NewPopularWords) > 0 {
		fmt.Fprintf(out, "\nNew popular words: %s\n", strings.Join(result.NewPopularWords, ", "))
	}
	if len(result.DroppedPopularWords) > 0 {
		fmt.Fprintf(out, "Dropped popular words: %s\n", strings.Join(result.DroppedPopularWords, ", "))
	}

	return nil
}

// formatDelta formats a count change with an explicit sign.
func formatDelta(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("+%d", delta)
	case delta < 0:
		return fmt.Sprintf("%d", delta)
	default:
		return "0"
	}
}
