// Package database provides SQLite-based storage for wordcrawl.
//
// The CrawlDB keeps a history of crawl runs, each with its word counts and
// the profiling records taken while it ran, so that runs can be compared
// later with "wordcrawl compare".
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external service - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode provides good concurrent read performance
package database
