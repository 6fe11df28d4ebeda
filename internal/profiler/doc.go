// Package profiler measures how long selected operations of a component take.
//
// # Architecture
//
// Go has no runtime method proxies, so interception is explicit. A capability
// interface (for example parser.PageParser) gets a small wrapper type that
// implements the same interface and routes each method through an
// Interceptor. The Interceptor is built once, from the statically known set of
// operation names that should be timed:
//
//	prof := profiler.New(clock.System{})
//	it := prof.Interceptor(target, "Parse")
//	err := it.Invoke("Parse", func() error { ... })
//
// Design decision: We record in a deferred function because:
//  1. The duration is written on success, error and panic paths alike
//  2. The wrapped call's return values pass through untouched
//  3. Callers see the original error, so errors.Is and errors.As keep working
//
// Operations that are not marked are forwarded directly and leave no record.
//
// # State
//
// Every measurement is appended to the Profiler's State, an append-only log
// that is safe for concurrent use. Summaries aggregates the log per
// (component, operation) for report rendering.
package profiler
