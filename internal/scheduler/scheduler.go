// internal/scheduler/scheduler.go
package scheduler

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler runs delayed tasks keyed by an arbitrary string. Scheduling a
// key that already has a pending task replaces it. Tasks live for the whole
// process, not for any request or connection.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	nextGen uint64
	stopped bool
}

type task struct {
	gen   uint64
	timer *time.Timer
}

func New() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// Key joins parts into a task key, e.g. Key(deviceID, streamID).
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// Schedule arms fn to run after delay under key, cancelling any task already
// pending for key. It reports false after Stop.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if old, ok := s.tasks[key]; ok {
		old.timer.Stop()
	}

	s.nextGen++
	t := &task{gen: s.nextGen}
	t.timer = time.AfterFunc(delay, func() { s.fire(key, t.gen, fn) })
	s.tasks[key] = t
	return true
}

// fire runs fn only if the task is still the current one for key. A timer
// that already fired when it was replaced loses here.
func (s *Scheduler) fire(key string, gen uint64, fn func()) {
	s.mu.Lock()
	current, ok := s.tasks[key]
	if !ok || current.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, key)
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{"task_key": key, "panic": r}).Error("Scheduled task panicked")
		}
	}()
	fn()
}

// Cancel drops the pending task for key and reports whether there was one.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop cancels every pending task. Later Schedule calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	s.stopped = true
}
