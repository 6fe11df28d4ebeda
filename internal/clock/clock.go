// Package clock provides the time source used by the crawler and the profiler.
//
// Deadline checks and profiling measurements never call time.Now directly.
// They go through a Clock so tests can drive time deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// Fake is a manually driven Clock for tests.
// It is safe for concurrent use.
type Fake struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// FakeOption configures a Fake.
type FakeOption func(*Fake)

// WithAutoStep makes every call to Now advance the clock by d after
// reading it. Two consecutive reads therefore differ by exactly d, which
// gives profiled calls a predictable duration.
func WithAutoStep(d time.Duration) FakeOption {
	return func(f *Fake) {
		f.step = d
	}
}

// NewFake creates a Fake clock frozen at start.
func NewFake(start time.Time, opts ...FakeOption) *Fake {
	f := &Fake{now: start}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Now returns the current fake instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now
	f.now = f.now.Add(f.step)
	return now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}
