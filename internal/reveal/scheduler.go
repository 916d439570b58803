package reveal

import (
	"sync"
	"time"
)

// Scheduler schedules single-shot callbacks. The sequencer owns one
// scheduler and cancels it wholesale on teardown, so no timer can fire
// against a discarded view.
type Scheduler interface {
	// After runs fn once d has elapsed. The returned func cancels the
	// pending call; cancelling after the fact is a no-op.
	After(d time.Duration, fn func()) (cancel func())
	// StopAll cancels every pending callback.
	StopAll()
}

// TimerScheduler implements Scheduler on top of time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	seq    int
	timers map[int]*time.Timer
}

// NewTimerScheduler returns a ready Scheduler backed by real timers.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[int]*time.Timer)}
}

func (s *TimerScheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := s.seq

	t := time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
	s.timers[id] = t

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t, ok := s.timers[id]; ok {
			t.Stop()
			delete(s.timers, id)
		}
	}
}

func (s *TimerScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
