package webhook

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler tracks pending retry timers per webhook config so that
// deleting or disabling a config cancels its in-flight retries instead
// of delivering against stale state.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[uuid.UUID]map[*time.Timer]struct{}
	stopped bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[uuid.UUID]map[*time.Timer]struct{}),
	}
}

// Schedule runs fn after delay, keyed by the webhook config id.
// Calls after Stop are dropped.
func (s *Scheduler) Schedule(configID uuid.UUID, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		set, ok := s.timers[configID]
		if ok {
			if _, pending := set[timer]; !pending {
				// Cancelled between firing and acquiring the lock.
				s.mu.Unlock()
				return
			}
			delete(set, timer)
			if len(set) == 0 {
				delete(s.timers, configID)
			}
		}
		stopped := s.stopped
		s.mu.Unlock()

		if !stopped && ok {
			fn()
		}
	})

	set, ok := s.timers[configID]
	if !ok {
		set = make(map[*time.Timer]struct{})
		s.timers[configID] = set
	}
	set[timer] = struct{}{}
}

// Cancel stops every pending retry for the given config.
func (s *Scheduler) Cancel(configID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for timer := range s.timers[configID] {
		timer.Stop()
	}
	delete(s.timers, configID)
}

// Pending returns the number of retries still scheduled for the config.
func (s *Scheduler) Pending(configID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[configID])
}

// Stop cancels all pending retries. The scheduler accepts no further work.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for _, set := range s.timers {
		for timer := range set {
			timer.Stop()
		}
	}
	s.timers = make(map[uuid.UUID]map[*time.Timer]struct{})
}
