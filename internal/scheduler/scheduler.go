// Package scheduler runs named recurring tasks on a coarse polling tick.
// Each task has its own interval; a tick fires every task whose interval
// has elapsed and that is not already running. Actual execution may lag
// the nominal interval by up to one tick period.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TaskFunc is the unit of work for a scheduled task. Errors are logged and
// treated as a completed run; there is no early retry.
type TaskFunc func(ctx context.Context) error

type task struct {
	id       string
	interval time.Duration
	lastRun  time.Time
	running  bool
	fn       TaskFunc
}

// Scheduler owns the task registry, its polling ticker, and the goroutines
// it fires. State lives only in memory for the life of the process.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*task

	tick time.Duration
	log  *slog.Logger
	now  func() time.Time

	done chan struct{}
	stop sync.Once
}

// New creates a Scheduler polling at the given tick period.
func New(tick time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*task),
		tick:  tick,
		log:   log,
		now:   time.Now,
		done:  make(chan struct{}),
	}
}

// Schedule registers a recurring task. Re-registering an id replaces the
// prior entry and resets its lastRun to now, so the first run happens one
// full interval from registration.
func (s *Scheduler) Schedule(id string, interval time.Duration, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = &task{
		id:       id,
		interval: interval,
		lastRun:  s.now(),
		fn:       fn,
	}
	s.log.Info("task scheduled", "task", id, "interval", interval.String())
}

// Remove deregisters a task. Removing an unknown id is a no-op. An
// in-flight run is not interrupted; it simply has no entry to return to.
func (s *Scheduler) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// Start launches the polling loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Stop halts the polling loop. In-flight task runs finish on their own.
func (s *Scheduler) Stop() {
	s.stop.Do(func() { close(s.done) })
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue fires every task whose interval has elapsed and that is not
// already running. It does not wait for task bodies: each runs in its own
// goroutine, guarded by the running flag so at most one invocation per id
// is in flight. A tick that finds a task running skips it for that tick;
// no follow-up run is queued.
func (s *Scheduler) runDue(ctx context.Context) {
	s.mu.Lock()
	var due []*task
	now := s.now()
	for _, t := range s.tasks {
		if t.running || now.Sub(t.lastRun) < t.interval {
			continue
		}
		t.running = true
		due = append(due, t)
	}
	s.mu.Unlock()

	for _, t := range due {
		go s.run(ctx, t)
	}
}

func (s *Scheduler) run(ctx context.Context, t *task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("task panicked", "task", t.id, "panic", r)
		}
		// lastRun advances whether the run succeeded or not: a failed run
		// waits a full interval before the next attempt.
		s.mu.Lock()
		t.running = false
		t.lastRun = s.now()
		s.mu.Unlock()
	}()

	if err := t.fn(ctx); err != nil {
		s.log.Error("task failed", "task", t.id, "error", err)
	}
}
