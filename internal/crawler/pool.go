package crawler

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of Tasks doing work at the same time.
// A nil *Pool is unbounded.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a Pool with size slots.
func NewPool(size int) *Pool {
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Acquire blocks until a slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.sem.Acquire(ctx, 1)
}

// Release returns a slot taken by Acquire.
func (p *Pool) Release() {
	if p == nil {
		return
	}
	p.sem.Release(1)
}
