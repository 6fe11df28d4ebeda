package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/wordcrawl/internal/clock"
	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/crawler"
	"github.com/nao1215/wordcrawl/internal/database"
	"github.com/nao1215/wordcrawl/internal/log"
	"github.com/nao1215/wordcrawl/internal/metrics"
	"github.com/nao1215/wordcrawl/internal/parser"
	"github.com/nao1215/wordcrawl/internal/pattern"
	"github.com/nao1215/wordcrawl/internal/profiler"
	"github.com/nao1215/wordcrawl/internal/report"
	"github.com/spf13/cobra"
)

// metricsShutdownTimeout bounds the graceful stop of the metrics server.
const metricsShutdownTimeout = 5 * time.Second

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl web pages and count popular words",
		Long: `Crawl fetches the seed URLs and follows their links, in parallel, up to the
maximum depth and within the timeout. Every page is fetched at most once.

The result (the most popular words and the number of URLs visited) is
written as JSON, and a profiling report is appended to the profile output.
Each run is also saved to the local history database for "wordcrawl compare".

Examples:
  # Crawl a site two links deep
  wordcrawl crawl -d 2 https://example.com/

  # Crawl for at most 30 seconds with 16 parallel fetches
  wordcrawl crawl -t 30s -p 16 https://example.com/

  # Skip images and count only words longer than three letters
  wordcrawl crawl --ignore-url '.*\.(png|jpg)' --ignore-word '.{1,3}' https://example.com/

  # Use a JSON crawl configuration and write the result to a file
  wordcrawl crawl -c crawl.json -o result.json --profile-output profile.txt

  # Expose Prometheus metrics while crawling
  wordcrawl crawl --metrics-addr 127.0.0.1:9090 https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth (1 fetches the seeds only)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Wall-clock budget of the whole crawl")
	cmd.Flags().IntP("parallelism", "p", 0,
		"Number of pages fetched at the same time (default: number of CPUs)")
	cmd.Flags().StringArray("ignore-url", nil,
		"Regular expression of URLs to skip, matched in full (repeatable)")
	cmd.Flags().StringArray("ignore-word", nil,
		"Regular expression of words to leave uncounted, matched in full (repeatable)")

	// HTTP flags
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout,
		"Timeout of a single page request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of bytes read per page")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wordcrawl in current or home directory)")

	// Report flags
	cmd.Flags().IntP("popular", "n", config.DefaultPopularWordCount,
		"Number of most popular words in the result")
	cmd.Flags().StringP("output", "o", "",
		"Write the result to this file instead of stdout")
	cmd.Flags().String("profile-output", "",
		"Append the profiling report to this file instead of stderr")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write the result and profile summary as Markdown")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address while crawling")
	cmd.Flags().Bool("no-save", false,
		"Do not save the run to the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing pages in flight...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig merges defaults, the configuration file, the environment and
// the flags the user set, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.ApplyTo(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := config.ApplyEnvironment(cfg, config.DefaultEnvFile); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.StartPages = args
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg. Flags left at their
// default do not override the configuration file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	if flags.Changed("depth") {
		if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("parallelism") {
		if cfg.Parallelism, err = flags.GetInt("parallelism"); err != nil {
			return err
		}
	}
	if flags.Changed("ignore-url") {
		urls, err := flags.GetStringArray("ignore-url")
		if err != nil {
			return err
		}
		cfg.IgnoredURLs = append(cfg.IgnoredURLs, urls...)
	}
	if flags.Changed("ignore-word") {
		words, err := flags.GetStringArray("ignore-word")
		if err != nil {
			return err
		}
		cfg.IgnoredWords = append(cfg.IgnoredWords, words...)
	}
	if flags.Changed("fetch-timeout") {
		if cfg.FetchTimeout, err = flags.GetDuration("fetch-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("popular") {
		if cfg.PopularWordCount, err = flags.GetInt("popular"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if cfg.ResultPath, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("profile-output") {
		if cfg.ProfileOutputPath, err = flags.GetString("profile-output"); err != nil {
			return err
		}
	}

	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
		return err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave

	return nil
}

// runCrawl wires the profiled parser and coordinator, runs one crawl and
// writes its reports. Result and profile output default to stdout and stderr.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	ignoredWords, err := pattern.Compile(cfg.IgnoredWords)
	if err != nil {
		return fmt.Errorf("configuration error: invalid ignored word pattern: %w", err)
	}

	client, err := parser.NewHTTPClient(cfg.FetchTimeout, cfg.ProxyAddress)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	prof := profiler.New(clock.System{})
	m := metrics.New()

	pageParser := parser.WithProfiling(
		parser.NewHTMLParser(client,
			parser.WithUserAgent(cfg.UserAgent),
			parser.WithMaxBodySize(cfg.MaxBodySize),
			parser.WithIgnoredWords(ignoredWords),
			parser.WithLogger(logger),
		),
		prof,
	)
	c := crawler.WithProfiling(
		crawler.NewCoordinator(pageParser,
			crawler.WithProfiler(prof),
			crawler.WithMetrics(m),
			crawler.WithLogger(logger),
		),
		prof,
	)

	if cfg.MetricsAddr != "" {
		srv, err := startMetricsServer(cfg.MetricsAddr, m, logger)
		if err != nil {
			return err
		}
		defer stopMetricsServer(srv, logger)
	}

	runAt := time.Now()
	result, err := c.Crawl(ctx, crawler.Request{
		Seeds:          cfg.StartPages,
		MaxDepth:       cfg.MaxDepth,
		Timeout:        cfg.Timeout,
		IgnorePatterns: cfg.IgnoredURLs,
		Parallelism:    cfg.Parallelism,
	})
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	if ctx.Err() != nil {
		logger.Warn("crawl interrupted, reporting partial result")
	}

	rep := &report.Report{
		RunAt:            runAt,
		Result:           result,
		PopularWordCount: cfg.PopularWordCount,
		Profile:          prof.State().Summaries(),
	}

	if err := writeResult(cfg, rep, stdout); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := writeProfile(cfg, rep, stderr); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	if cfg.SaveToDB {
		// Saving still happens after an interrupt.
		if err := saveCrawlRun(context.WithoutCancel(ctx), cfg, runAt, result, prof.State().Records(), logger); err != nil {
			logger.Error("failed to save crawl run", "error", err)
		}
	}

	return nil
}

// writeResult writes the result as JSON, or as Markdown when requested.
// A result file is overwritten.
func writeResult(cfg *config.Config, rep *report.Report, stdout io.Writer) error {
	output := stdout
	if cfg.ResultPath != "" {
		f, err := openOutputFile(cfg.ResultPath, os.O_TRUNC)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	var w report.Writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(output)
	}
	_, err := w.Write(rep)
	return err
}

// writeProfile appends the profiling report to the profile file, so the
// file keeps the history of every run.
func writeProfile(cfg *config.Config, rep *report.Report, stderr io.Writer) error {
	output := stderr
	if cfg.ProfileOutputPath != "" {
		f, err := openOutputFile(cfg.ProfileOutputPath, os.O_APPEND)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	_, err := report.NewTextWriter(output, report.WithVerbose(cfg.Verbose)).Write(rep)
	return err
}

// openOutputFile opens path for writing, creating it and its parent
// directories when needed. mode is os.O_TRUNC or os.O_APPEND.
func openOutputFile(path string, mode int) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports are only readable by the owner.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|mode, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, nil
}

// startMetricsServer serves the Prometheus metrics at /metrics on addr.
// The returned server's Addr is the address actually bound, which differs
// from addr when addr uses port 0.
func startMetricsServer(addr string, m *metrics.Metrics, logger *slog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on metrics address %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", srv.Addr)
	return srv, nil
}

// stopMetricsServer shuts the metrics server down gracefully.
func stopMetricsServer(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to stop metrics server", "error", err)
	}
}

// saveCrawlRun stores the run and its profiling records in the history database.
func saveCrawlRun(ctx context.Context, cfg *config.Config, runAt time.Time, result *crawler.Result, records []profiler.Record, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveCrawlRun(ctx, &database.CrawlRun{
		Timestamp:   runAt,
		Seeds:       cfg.StartPages,
		MaxDepth:    cfg.MaxDepth,
		Parallelism: cfg.Parallelism,
		Timeout:     cfg.Timeout,
		URLsVisited: result.URLsVisited,
		WordCounts:  result.WordCounts,
	})
	if err != nil {
		return err
	}
	if err := db.SaveProfileRecords(ctx, id, records); err != nil {
		return err
	}

	logger.Info("crawl run saved to database", "id", id, "dir", cfg.DBDir)
	return nil
}
