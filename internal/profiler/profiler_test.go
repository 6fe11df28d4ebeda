package profiler

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/wordcrawl/internal/clock"
)

// greeter is a small capability used to exercise the interceptor the same
// way production wrappers do.
type greeter interface {
	Greet(name string) (string, error)
	Wave() error
}

var errNoName = errors.New("no name given")

type nameError struct {
	name string
}

func (e *nameError) Error() string { return "bad name " + e.name }

type realGreeter struct {
	calls int
}

func (g *realGreeter) Greet(name string) (string, error) {
	g.calls++
	switch name {
	case "":
		return "", errNoName
	case "bad":
		return "", &nameError{name: name}
	case "panic":
		panic("greeter panicked")
	}
	return "hello " + name, nil
}

func (g *realGreeter) Wave() error {
	g.calls++
	return nil
}

type profiledGreeter struct {
	next greeter
	it   *Interceptor
}

func (p profiledGreeter) Greet(name string) (string, error) {
	return Call(p.it, "Greet", func() (string, error) {
		return p.next.Greet(name)
	})
}

func (p profiledGreeter) Wave() error {
	return p.it.Invoke("Wave", p.next.Wave)
}

func newProfiledGreeter(t *testing.T) (greeter, *realGreeter, *Profiler) {
	t.Helper()

	clk := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), clock.WithAutoStep(5*time.Millisecond))
	prof := New(clk)
	target := &realGreeter{}
	return profiledGreeter{next: target, it: prof.Interceptor(target, "Greet")}, target, prof
}

func TestInterceptor(t *testing.T) {
	t.Parallel()

	t.Run("records profiled call and forwards result", func(t *testing.T) {
		t.Parallel()

		g, target, prof := newProfiledGreeter(t)

		got, err := g.Greet("gopher")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "hello gopher" {
			t.Errorf("expected %q, got %q", "hello gopher", got)
		}
		if target.calls != 1 {
			t.Errorf("expected underlying call once, got %d", target.calls)
		}

		records := prof.State().Records()
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		r := records[0]
		if r.Component != "*profiler.realGreeter" {
			t.Errorf("expected component *profiler.realGreeter, got %q", r.Component)
		}
		if r.Operation != "Greet" {
			t.Errorf("expected operation Greet, got %q", r.Operation)
		}
		if r.Duration != 5*time.Millisecond {
			t.Errorf("expected duration 5ms, got %v", r.Duration)
		}
	})

	t.Run("records failed call and returns the same error", func(t *testing.T) {
		t.Parallel()

		g, _, prof := newProfiledGreeter(t)

		_, err := g.Greet("")
		if !errors.Is(err, errNoName) {
			t.Fatalf("expected errNoName, got %v", err)
		}
		if err != errNoName { //nolint:errorlint // identity is what is under test
			t.Error("expected the exact error value, not a wrapper")
		}
		if n := prof.State().Len(); n != 1 {
			t.Errorf("expected 1 record for failed call, got %d", n)
		}
	})

	t.Run("typed errors survive interception", func(t *testing.T) {
		t.Parallel()

		g, _, _ := newProfiledGreeter(t)

		_, err := g.Greet("bad")
		var ne *nameError
		if !errors.As(err, &ne) {
			t.Fatalf("expected *nameError, got %T", err)
		}
		if ne.name != "bad" {
			t.Errorf("expected payload %q, got %q", "bad", ne.name)
		}
	})

	t.Run("records panicking call", func(t *testing.T) {
		t.Parallel()

		g, _, prof := newProfiledGreeter(t)

		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic to propagate")
				}
			}()
			_, _ = g.Greet("panic")
		}()

		if n := prof.State().Len(); n != 1 {
			t.Errorf("expected 1 record for panicking call, got %d", n)
		}
	})

	t.Run("non-profiled operation records nothing", func(t *testing.T) {
		t.Parallel()

		g, target, prof := newProfiledGreeter(t)

		if err := g.Wave(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if target.calls != 1 {
			t.Errorf("expected call to be forwarded, got %d calls", target.calls)
		}
		if n := prof.State().Len(); n != 0 {
			t.Errorf("expected no records, got %d", n)
		}
	})

	t.Run("nil interceptor forwards", func(t *testing.T) {
		t.Parallel()

		var prof *Profiler
		target := &realGreeter{}
		g := profiledGreeter{next: target, it: prof.Interceptor(target, "Greet")}

		got, err := g.Greet("x")
		if err != nil || got != "hello x" {
			t.Errorf("expected forwarded result, got %q, %v", got, err)
		}
		if g.it.Profiled("Greet") {
			t.Error("nil interceptor should profile nothing")
		}
	})

	t.Run("concurrent invocations are all recorded", func(t *testing.T) {
		t.Parallel()

		prof := New(clock.System{})
		it := prof.Interceptor(struct{}{}, "Work")

		var wg sync.WaitGroup
		for i := range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = it.Invoke("Work", func() error {
					if i%2 == 0 {
						return fmt.Errorf("fail %d", i)
					}
					return nil
				})
			}()
		}
		wg.Wait()

		if n := prof.State().Len(); n != 100 {
			t.Errorf("expected 100 records, got %d", n)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Component: "b", Operation: "Parse", Start: start, Duration: 3 * time.Second},
		{Component: "a", Operation: "Crawl", Start: start, Duration: time.Second},
		{Component: "b", Operation: "Parse", Start: start, Duration: time.Second},
		{Component: "b", Operation: "Claim", Start: start, Duration: time.Millisecond},
	}

	got := Summarize(records)
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}

	wantKeys := []string{"a#Crawl", "b#Claim", "b#Parse"}
	for i, key := range wantKeys {
		if got[i].Key() != key {
			t.Errorf("summary %d: expected %s, got %s", i, key, got[i].Key())
		}
	}

	parse := got[2]
	if parse.Calls != 2 {
		t.Errorf("expected 2 calls, got %d", parse.Calls)
	}
	if parse.Total != 4*time.Second {
		t.Errorf("expected total 4s, got %v", parse.Total)
	}
	if parse.Max != 3*time.Second {
		t.Errorf("expected max 3s, got %v", parse.Max)
	}
	if parse.Mean() != 2*time.Second {
		t.Errorf("expected mean 2s, got %v", parse.Mean())
	}

	if (Summary{}).Mean() != 0 {
		t.Error("expected zero mean for empty summary")
	}
}

func TestStateRecordsIsCopy(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Record(Record{Component: "c", Operation: "op"})

	records := s.Records()
	records[0].Operation = "mutated"

	if s.Records()[0].Operation != "op" {
		t.Error("Records must return a copy")
	}
}
