// Package debounce provides a keyed delay-and-collapse scheduler: of several
// rapid Schedule calls for the same key, only the last one's task runs.
package debounce

import (
	"sync"
	"time"
)

// Scheduler arms one timer per key. Scheduling a key that already has a
// pending task replaces it, so at most one task per key can ever fire.
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	running sync.WaitGroup
}

// NewScheduler creates a Scheduler with the given quiet period.
func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms fn to run after the quiet period elapses with no further
// Schedule or Cancel call for the same key. fn runs on a timer goroutine.
func (s *Scheduler) Schedule(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		// A replacement may have been armed between firing and locking;
		// only the current timer for the key may run its task. The running
		// slot is claimed under the lock so Stop can join a task that has
		// already committed to firing.
		if s.timers[key] == t {
			delete(s.timers, key)
			s.running.Add(1)
			s.mu.Unlock()
			defer s.running.Done()
			fn()
			return
		}
		s.mu.Unlock()
	})
	s.timers[key] = t
}

// Cancel drops the pending task for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Stop cancels every pending task and waits for any task that has already
// fired to return. The scheduler stays usable afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()
	s.running.Wait()
}
