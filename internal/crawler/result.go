package crawler

import (
	"cmp"
	"slices"
)

// Result is the outcome of one crawl.
type Result struct {
	// WordCounts is the total number of occurrences of each word over all
	// visited pages.
	WordCounts map[string]int

	// URLsVisited is the number of distinct URLs claimed during the crawl.
	URLsVisited int
}

// WordCount is one entry of a word ranking.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// PopularWords returns the n most frequent words.
// Ties are broken by longer word first, then alphabetically.
// n <= 0 or n larger than the number of words returns every word.
func (r *Result) PopularWords(n int) []WordCount {
	words := make([]WordCount, 0, len(r.WordCounts))
	for word, count := range r.WordCounts {
		words = append(words, WordCount{Word: word, Count: count})
	}

	slices.SortFunc(words, func(a, b WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(len(b.Word), len(a.Word)); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})

	if n > 0 && n < len(words) {
		words = words[:n]
	}
	return words
}
