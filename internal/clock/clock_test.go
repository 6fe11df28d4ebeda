package clock

import (
	"sync"
	"testing"
	"time"
)

func TestSystem(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := System{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("System.Now() = %v, want between %v and %v", got, before, after)
	}
}

func TestFake(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("frozen until advanced", func(t *testing.T) {
		t.Parallel()

		f := NewFake(start)
		if !f.Now().Equal(start) || !f.Now().Equal(start) {
			t.Fatal("expected fake clock to stay frozen")
		}

		f.Advance(3 * time.Second)
		if got := f.Now(); !got.Equal(start.Add(3 * time.Second)) {
			t.Errorf("expected %v after advance, got %v", start.Add(3*time.Second), got)
		}
	})

	t.Run("set jumps to instant", func(t *testing.T) {
		t.Parallel()

		f := NewFake(start)
		target := start.Add(-time.Hour)
		f.Set(target)
		if got := f.Now(); !got.Equal(target) {
			t.Errorf("expected %v, got %v", target, got)
		}
	})

	t.Run("auto step advances on every read", func(t *testing.T) {
		t.Parallel()

		f := NewFake(start, WithAutoStep(10*time.Millisecond))
		first := f.Now()
		second := f.Now()
		if d := second.Sub(first); d != 10*time.Millisecond {
			t.Errorf("expected 10ms between reads, got %v", d)
		}
	})

	t.Run("concurrent reads are safe", func(t *testing.T) {
		t.Parallel()

		f := NewFake(start, WithAutoStep(time.Millisecond))
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = f.Now()
			}()
		}
		wg.Wait()

		if got := f.Now(); !got.Equal(start.Add(50 * time.Millisecond)) {
			t.Errorf("expected clock at +50ms, got %v", got.Sub(start))
		}
	})
}
