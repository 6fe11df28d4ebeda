package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wordcrawl/internal/profiler"
)

// FileName is the name of the database file inside the database directory.
const FileName = "wordcrawl.db"

// ErrRunNotFound is returned when no crawl run has the requested ID.
var ErrRunNotFound = errors.New("crawl run not found")

// CrawlDB provides SQLite-based storage for crawl runs and their profiling records.
//
// Design decision: We store each run's word counts as one JSON document
// instead of one row per word. Runs are always read back whole, and a
// large crawl produces tens of thousands of distinct words.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per completed crawl
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		seeds TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		parallelism INTEGER NOT NULL,
		timeout_ns INTEGER NOT NULL,
		urls_visited INTEGER NOT NULL,
		word_counts TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON crawl_runs(timestamp);

	-- Profiling records of a run, in the order they were taken
	CREATE TABLE IF NOT EXISTS profile_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES crawl_runs(id) ON DELETE CASCADE,
		component TEXT NOT NULL,
		operation TEXT NOT NULL,
		started_at TEXT NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profile_run ON profile_records(run_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// CrawlRun is a stored crawl and its result.
type CrawlRun struct {
	ID          int64
	Timestamp   time.Time
	Seeds       []string
	MaxDepth    int
	Parallelism int
	Timeout     time.Duration
	URLsVisited int
	WordCounts  map[string]int
}

// SaveCrawlRun stores run and returns its new ID.
// A zero Timestamp is set to the current time.
func (cdb *CrawlDB) SaveCrawlRun(ctx context.Context, run *CrawlRun) (int64, error) {
	seedsJSON, err := json.Marshal(run.Seeds)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize seeds: %w", err)
	}
	countsJSON, err := json.Marshal(run.WordCounts)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize word counts: %w", err)
	}

	timestamp := run.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	query := `
	INSERT INTO crawl_runs (timestamp, seeds, max_depth, parallelism, timeout_ns, urls_visited, word_counts)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		formatTimestamp(timestamp),
		string(seedsJSON),
		run.MaxDepth,
		run.Parallelism,
		int64(run.Timeout),
		run.URLsVisited,
		string(countsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save crawl run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get crawl run id: %w", err)
	}
	run.ID = id
	run.Timestamp = timestamp
	return id, nil
}

// GetCrawlRun retrieves a crawl run by its ID.
// It returns ErrRunNotFound when there is no such run.
func (cdb *CrawlDB) GetCrawlRun(ctx context.Context, id int64) (*CrawlRun, error) {
	query := `
	SELECT id, timestamp, seeds, max_depth, parallelism, timeout_ns, urls_visited, word_counts
	FROM crawl_runs
	WHERE id = ?
	`

	run, err := scanCrawlRun(cdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}
	return run, nil
}

// ListCrawlRuns returns the most recent runs, newest first.
// A limit of 0 or less returns every run.
func (cdb *CrawlDB) ListCrawlRuns(ctx context.Context, limit int) ([]*CrawlRun, error) {
	query := `
	SELECT id, timestamp, seeds, max_depth, parallelism, timeout_ns, urls_visited, word_counts
	FROM crawl_runs
	ORDER BY timestamp DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []*CrawlRun
	for rows.Next() {
		run, err := scanCrawlRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrawlRun(row rowScanner) (*CrawlRun, error) {
	var (
		run        CrawlRun
		timestamp  string
		seedsJSON  string
		timeoutNS  int64
		countsJSON string
	)

	err := row.Scan(
		&run.ID,
		&timestamp,
		&seedsJSON,
		&run.MaxDepth,
		&run.Parallelism,
		&timeoutNS,
		&run.URLsVisited,
		&countsJSON,
	)
	if err != nil {
		return nil, err
	}

	run.Timestamp = parseTimestamp(timestamp)
	run.Timeout = time.Duration(timeoutNS)
	if err := json.Unmarshal([]byte(seedsJSON), &run.Seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}
	if err := json.Unmarshal([]byte(countsJSON), &run.WordCounts); err != nil {
		return nil, fmt.Errorf("failed to parse word counts: %w", err)
	}
	return &run, nil
}

// SaveProfileRecords stores the profiling records of run runID in one transaction.
func (cdb *CrawlDB) SaveProfileRecords(ctx context.Context, runID int64, records []profiler.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after a successful commit
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO profile_records (run_id, component, operation, started_at, duration_ns)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			runID,
			r.Component,
			r.Operation,
			formatTimestamp(r.Start),
			int64(r.Duration),
		); err != nil {
			return fmt.Errorf("failed to save profile record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile records: %w", err)
	}
	return nil
}

// GetProfileRecords retrieves the profiling records of run runID in the order they were saved.
func (cdb *CrawlDB) GetProfileRecords(ctx context.Context, runID int64) ([]profiler.Record, error) {
	query := `
	SELECT component, operation, started_at, duration_ns
	FROM profile_records
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile records: %w", err)
	}
	defer rows.Close()

	var records []profiler.Record
	for rows.Next() {
		var (
			r          profiler.Record
			startedAt  string
			durationNS int64
		)
		if err := rows.Scan(&r.Component, &r.Operation, &startedAt, &durationNS); err != nil {
			return nil, fmt.Errorf("failed to scan profile record: %w", err)
		}
		r.Start = parseTimestamp(startedAt)
		r.Duration = time.Duration(durationNS)
		records = append(records, r)
	}

	return records, rows.Err()
}

// formatTimestamp stores instants as UTC RFC3339 with nanoseconds, which
// sorts lexically in time order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
