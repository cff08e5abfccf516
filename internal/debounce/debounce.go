// Package debounce coalesces bursts of calls into a single call that runs
// once the caller has been quiet for a fixed delay.
//
// The scheduler is injectable so callers (and tests) can drive time
// deterministically; the default uses time.AfterFunc.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules with the runtime timer.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer delays a function call until Delay has elapsed without a newer
// Trigger. Only the most recently triggered function runs.
type Debouncer struct {
	delay time.Duration
	sched Scheduler

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// New returns a Debouncer. A nil scheduler uses RealScheduler.
func New(delay time.Duration, sched Scheduler) *Debouncer {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Debouncer{delay: delay, sched: sched}
}

// Trigger (re)arms the debouncer with f, replacing any pending call.
// A zero delay still goes through the scheduler so calls stay asynchronous.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a Stop that lost the race with the timer firing
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		f()
	})
}

// Cancel drops the pending call, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
