// Package main provides the entry point for the wordcrawl CLI.
//
// wordcrawl crawls a set of start pages to a bounded link depth, in
// parallel and within a time budget, and reports the most frequent words
// together with how long the crawl spent in each profiled operation.
//
// Usage:
//
//	wordcrawl crawl https://example.com/
//	wordcrawl crawl -c crawl.json
//	wordcrawl compare
//
// See --help for all available options.
package main

// main is the entry point for wordcrawl.
func main() {
	Execute()
}
