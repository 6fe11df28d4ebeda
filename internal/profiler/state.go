package profiler

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Record is one measured invocation. Records are never modified after
// they are appended.
type Record struct {
	// Component is the type name of the wrapped component.
	Component string `json:"component"`

	// Operation is the method name.
	Operation string `json:"operation"`

	// Start is when the invocation began.
	Start time.Time `json:"start"`

	// Duration is the elapsed time of the invocation.
	Duration time.Duration `json:"duration"`
}

// Key returns "Component#Operation".
func (r Record) Key() string {
	return r.Component + "#" + r.Operation
}

// Summary aggregates all records of one (component, operation) pair.
type Summary struct {
	Component string
	Operation string
	Calls     int
	Total     time.Duration
	Max       time.Duration
}

// Key returns "Component#Operation".
func (s Summary) Key() string {
	return s.Component + "#" + s.Operation
}

// Mean returns the average duration per call.
func (s Summary) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// State is an append-only profiling log.
type State struct {
	mu      sync.Mutex
	records []Record
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		records: make([]Record, 0),
	}
}

// Record appends r. Safe for concurrent use.
func (s *State) Record(r Record) {
	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
}

// Len returns the number of records.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of the log in append order.
func (s *State) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Summaries aggregates the log per (component, operation), sorted by
// component and then operation.
func (s *State) Summaries() []Summary {
	return Summarize(s.Records())
}

// Summarize aggregates records per (component, operation).
func Summarize(records []Record) []Summary {
	byKey := make(map[string]*Summary)
	for _, r := range records {
		sum, ok := byKey[r.Key()]
		if !ok {
			sum = &Summary{Component: r.Component, Operation: r.Operation}
			byKey[r.Key()] = sum
		}
		sum.Calls++
		sum.Total += r.Duration
		sum.Max = max(sum.Max, r.Duration)
	}

	summaries := make([]Summary, 0, len(byKey))
	for _, sum := range byKey {
		summaries = append(summaries, *sum)
	}
	slices.SortFunc(summaries, func(a, b Summary) int {
		return cmp.Or(
			cmp.Compare(a.Component, b.Component),
			cmp.Compare(a.Operation, b.Operation),
		)
	})
	return summaries
}
