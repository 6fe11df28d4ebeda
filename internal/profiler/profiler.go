package profiler

import (
	"fmt"
	"time"

	"github.com/nao1215/wordcrawl/internal/clock"
)

// Profiler hands out Interceptors that all write into one State.
type Profiler struct {
	// clock is shared with every Interceptor so that measurements are
	// deterministic under a fake clock.
	clock clock.Clock

	// state receives one Record per profiled invocation.
	state *State
}

// New creates a Profiler using clk as its time source.
// A nil clk falls back to the system clock.
func New(clk clock.Clock) *Profiler {
	if clk == nil {
		clk = clock.System{}
	}
	return &Profiler{
		clock: clk,
		state: NewState(),
	}
}

// State returns the log this Profiler records into.
func (p *Profiler) State() *State {
	return p.state
}

// Interceptor returns an Interceptor for target that times the named operations.
// The component name is the dynamic type of target (e.g. "*parser.HTMLParser").
// A nil Profiler returns a nil Interceptor, which forwards every call untouched.
func (p *Profiler) Interceptor(target any, operations ...string) *Interceptor {
	if p == nil {
		return nil
	}

	profiled := make(map[string]struct{}, len(operations))
	for _, op := range operations {
		profiled[op] = struct{}{}
	}

	return &Interceptor{
		component: fmt.Sprintf("%T", target),
		profiled:  profiled,
		clock:     p.clock,
		state:     p.state,
	}
}

// Interceptor times the profiled operations of one wrapped component.
// It is immutable after construction and safe for concurrent use.
type Interceptor struct {
	component string
	profiled  map[string]struct{}
	clock     clock.Clock
	state     *State
}

// Component returns the component type name used in records.
func (i *Interceptor) Component() string {
	if i == nil {
		return ""
	}
	return i.component
}

// Profiled reports whether op is marked for measurement.
func (i *Interceptor) Profiled(op string) bool {
	if i == nil {
		return false
	}
	_, ok := i.profiled[op]
	return ok
}

// Invoke calls fn as operation op and returns its error unchanged.
func (i *Interceptor) Invoke(op string, fn func() error) error {
	if !i.Profiled(op) {
		return fn()
	}
	defer i.record(op, i.clock.Now())
	return fn()
}

// Call is the value-returning form of Interceptor.Invoke.
func Call[T any](i *Interceptor, op string, fn func() (T, error)) (T, error) {
	if !i.Profiled(op) {
		return fn()
	}
	defer i.record(op, i.clock.Now())
	return fn()
}

// record appends the measurement started at start.
// It runs deferred, so a panicking call is still measured before the panic
// continues up the stack.
func (i *Interceptor) record(op string, start time.Time) {
	i.state.Record(Record{
		Component: i.component,
		Operation: op,
		Start:     start,
		Duration:  i.clock.Now().Sub(start),
	})
}
