package crawler

import (
	"hash/fnv"
	"maps"
	"sync"
	"sync/atomic"
)

// VisitedSet records the URLs a crawl has claimed.
// Implementations must be safe for concurrent use.
type VisitedSet interface {
	// Claim inserts url and reports whether this call inserted it.
	// Exactly one of any number of concurrent Claims for the same URL wins.
	Claim(url string) bool

	// Contains reports whether url has been claimed.
	Contains(url string) bool

	// Len returns the number of claimed URLs.
	Len() int
}

// NewVisitedSet returns an empty lock-free VisitedSet.
func NewVisitedSet() VisitedSet {
	return &visitedSet{}
}

// visitedSet is a VisitedSet backed by sync.Map.
// Keys are only ever added, which is the access pattern sync.Map is built for.
type visitedSet struct {
	urls sync.Map
	size atomic.Int64
}

func (v *visitedSet) Claim(url string) bool {
	if _, loaded := v.urls.LoadOrStore(url, struct{}{}); loaded {
		return false
	}
	v.size.Add(1)
	return true
}

func (v *visitedSet) Contains(url string) bool {
	_, ok := v.urls.Load(url)
	return ok
}

func (v *visitedSet) Len() int {
	return int(v.size.Load())
}

// wordShards is the number of independently locked word count shards.
const wordShards = 32

// WordCounts is a concurrent word to count mapping.
// Words are spread over shards by hash so merges of different words rarely
// contend on the same lock.
type WordCounts struct {
	shards [wordShards]wordShard
}

type wordShard struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewWordCounts returns empty counts.
func NewWordCounts() *WordCounts {
	w := &WordCounts{}
	for i := range w.shards {
		w.shards[i].counts = make(map[string]int)
	}
	return w
}

// Merge adds every count in counts to the totals.
func (w *WordCounts) Merge(counts map[string]int) {
	for word, n := range counts {
		shard := w.shard(word)
		shard.mu.Lock()
		shard.counts[word] += n
		shard.mu.Unlock()
	}
}

// Snapshot returns a copy of the current totals.
func (w *WordCounts) Snapshot() map[string]int {
	out := make(map[string]int)
	for i := range w.shards {
		shard := &w.shards[i]
		shard.mu.Lock()
		maps.Copy(out, shard.counts)
		shard.mu.Unlock()
	}
	return out
}

func (w *WordCounts) shard(word string) *wordShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return &w.shards[h.Sum32()%wordShards]
}

// State is the mutable state shared by every Task of one crawl.
type State struct {
	Visited VisitedSet
	Words   *WordCounts
}

// NewState returns a fresh State. A nil visited uses NewVisitedSet.
func NewState(visited VisitedSet) *State {
	if visited == nil {
		visited = NewVisitedSet()
	}
	return &State{
		Visited: visited,
		Words:   NewWordCounts(),
	}
}

// Result freezes the state into a Result. Call it only after every Task has returned.
func (s *State) Result() *Result {
	return &Result{
		WordCounts:  s.Words.Snapshot(),
		URLsVisited: s.Visited.Len(),
	}
}
