package debounce

import (
	"sort"
	"sync"
	"time"
)

// FakeScheduler is a manually advanced Scheduler. Callbacks run synchronously
// inside Advance, in deadline order.
type FakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *FakeScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc implements Scheduler.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d and fires every due timer.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	now := s.now
	var due []*fakeTimer
	kept := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped || t.fired:
		case t.at <= now:
			t.fired = true
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	s.timers = kept
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of armed timers.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
