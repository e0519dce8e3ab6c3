package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestTaskRunsAfterInterval(t *testing.T) {
	s := New(time.Millisecond, testLogger())
	defer s.Stop()

	var runs atomic.Int32
	s.Schedule("t", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(context.Background())

	waitFor(t, time.Second, func() bool { return runs.Load() >= 1 })
}

func TestTaskDoesNotRunBeforeInterval(t *testing.T) {
	s := New(time.Millisecond, testLogger())
	defer s.Stop()

	var runs atomic.Int32
	s.Schedule("t", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("task ran %d times before its interval elapsed", got)
	}
}

func TestMutualExclusion(t *testing.T) {
	s := New(time.Millisecond, testLogger())
	defer s.Stop()

	var active atomic.Int32
	var maxActive atomic.Int32
	var runs atomic.Int32
	release := make(chan struct{})

	s.Schedule("slow", time.Millisecond, func(context.Context) error {
		cur := active.Add(1)
		for {
			prev := maxActive.Load()
			if cur <= prev || maxActive.CompareAndSwap(prev, cur) {
				break
			}
		}
		runs.Add(1)
		<-release
		active.Add(-1)
		return nil
	})
	s.Start(context.Background())

	// Let many ticks pass while the first invocation is blocked.
	waitFor(t, time.Second, func() bool { return runs.Load() >= 1 })
	time.Sleep(20 * time.Millisecond)
	close(release)

	if got := maxActive.Load(); got > 1 {
		t.Errorf("max concurrent invocations = %d, want 1", got)
	}
}

func TestFailedRunWaitsFullInterval(t *testing.T) {
	s := New(time.Millisecond, testLogger())
	defer s.Stop()

	var mu sync.Mutex
	var runTimes []time.Time
	interval := 30 * time.Millisecond

	s.Schedule("failing", interval, func(context.Context) error {
		mu.Lock()
		runTimes = append(runTimes, time.Now())
		mu.Unlock()
		return errors.New("always fails")
	})
	s.Start(context.Background())

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(runTimes) >= 2
	})

	mu.Lock()
	gap := runTimes[1].Sub(runTimes[0])
	mu.Unlock()
	if gap < interval {
		t.Errorf("second run after %v, want at least the %v interval", gap, interval)
	}
}

func TestRescheduleResetsLastRun(t *testing.T) {
	s := New(time.Millisecond, testLogger())
	defer s.Stop()

	var firstRuns, secondRuns atomic.Int32
	s.Schedule("t", 10*time.Millisecond, func(context.Context) error {
		firstRuns.Add(1)
		return nil
	})
	// Replacing the registration swaps the body and restarts the interval
	// clock.
	s.Schedule("t", 10*time.Millisecond, func(context.Context) error {
		secondRuns.Add(1)
		return nil
	})
	s.Start(context.Background())

	waitFor(t, time.Second, func() bool { return secondRuns.Load() >= 1 })
	if got := firstRuns.Load(); got != 0 {
		t.Errorf("replaced task body ran %d times", got)
	}
}

func TestRemove(t *testing.T) {
	s := New(time.Millisecond, testLogger())
	defer s.Stop()

	var runs atomic.Int32
	s.Schedule("t", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Remove("t")
	s.Start(context.Background())

	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("removed task ran %d times", got)
	}
}

func TestPanicRecovered(t *testing.T) {
	s := New(time.Millisecond, testLogger())
	defer s.Stop()

	var runs atomic.Int32
	s.Schedule("panicky", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		panic("boom")
	})
	s.Start(context.Background())

	// A panicking task must not kill the loop; it should run again after
	// its interval.
	waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 2 })
}

func TestStopHaltsLoop(t *testing.T) {
	s := New(time.Millisecond, testLogger())

	var runs atomic.Int32
	s.Schedule("t", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(context.Background())
	waitFor(t, time.Second, func() bool { return runs.Load() >= 1 })

	s.Stop()
	s.Stop() // idempotent
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got > after+1 {
		t.Errorf("task kept running after Stop: %d -> %d", after, got)
	}
}
