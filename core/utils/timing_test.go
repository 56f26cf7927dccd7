package utils

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []int
}

func (r *recorder) record(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestDebounceFiresOnceWithLastArgs(t *testing.T) {
	rec := &recorder{}
	debounced := Debounce(rec.record, 100*time.Millisecond)

	for i := 1; i <= 5; i++ {
		debounced(i)
		time.Sleep(10 * time.Millisecond)
	}

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("debounced func fired early: %v", got)
	}

	time.Sleep(250 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 call, got %v", got)
	}
	if got[0] != 5 {
		t.Errorf("expected args of last call (5), got %d", got[0])
	}
}

func TestDebounceSeparateWindows(t *testing.T) {
	rec := &recorder{}
	debounced := Debounce(rec.record, 30*time.Millisecond)

	debounced(1)
	time.Sleep(100 * time.Millisecond)
	debounced(2)
	time.Sleep(100 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestThrottleLeadingAndTrailing(t *testing.T) {
	rec := &recorder{}
	throttled := Throttle(rec.record, 100*time.Millisecond)

	start := time.Now()
	at := func(ms int) {
		time.Sleep(time.Until(start.Add(time.Duration(ms) * time.Millisecond)))
	}

	throttled(0)
	if got := rec.snapshot(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("leading call should run immediately, got %v", got)
	}

	at(30)
	throttled(30)
	at(60)
	throttled(60)

	at(80)
	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("no trailing call expected before the window closes, got %v", got)
	}

	at(130)
	got := rec.snapshot()
	if len(got) != 2 || got[1] != 60 {
		t.Fatalf("trailing call should use most recent args (60), got %v", got)
	}

	at(150)
	throttled(150)

	at(350)
	got = rec.snapshot()
	want := []int{0, 60, 150}
	if len(got) != len(want) {
		t.Fatalf("got calls %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestThrottleImmediateAfterQuietWindow(t *testing.T) {
	rec := &recorder{}
	throttled := Throttle(rec.record, 20*time.Millisecond)

	throttled(1)
	time.Sleep(60 * time.Millisecond)
	throttled(2)

	got := rec.snapshot()
	if len(got) != 2 || got[1] != 2 {
		t.Errorf("call after quiet window should be immediate, got %v", got)
	}
}
