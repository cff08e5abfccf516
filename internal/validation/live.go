package validation

import (
	"sync"
	"time"

	"github.com/tbourn/go-budget-assign/internal/debounce"
)

// Live validates a draft that changes on every keystroke. Updates are
// debounced so a half-typed address does not flash an "invalid email"
// message; only the last input of a burst is validated.
type Live struct {
	v        Validator
	debounce *debounce.Debouncer
	onResult func(Input, Verdict)

	mu      sync.Mutex
	verdict *Verdict
	input   Input
	gen     uint64
}

// NewLive returns a debounced validator. onResult, when non-nil, runs after
// every settled debounced validation with the input it was computed from.
// It runs outside the lock, so the caller must check that input against
// its own current draft.
func NewLive(v Validator, delay time.Duration, sched debounce.Scheduler, onResult func(Input, Verdict)) *Live {
	return &Live{v: v, debounce: debounce.New(delay, sched), onResult: onResult}
}

// Update records in as the current draft and schedules validation. The
// previous verdict is cleared so a stale verdict never gates submission.
func (l *Live) Update(in Input) {
	l.mu.Lock()
	l.input = in
	l.verdict = nil
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	l.debounce.Trigger(func() {
		vd := l.v.Validate(in)
		l.mu.Lock()
		if gen != l.gen {
			l.mu.Unlock()
			return
		}
		l.verdict = &vd
		l.mu.Unlock()
		if l.onResult != nil {
			l.onResult(in, vd)
		}
	})
}

// Flush validates the current draft immediately, dropping any pending
// debounced run. Submission uses it so the verdict is never stale.
func (l *Live) Flush() Verdict {
	return l.Settle(l.Input())
}

// Settle replaces the draft with in and validates it immediately. Any
// debounced run still pending for an older draft is dropped.
func (l *Live) Settle(in Input) Verdict {
	l.debounce.Cancel()
	vd := l.v.Validate(in)
	l.mu.Lock()
	l.input = in
	l.gen++
	l.verdict = &vd
	l.mu.Unlock()
	return vd
}

// Verdict returns the settled verdict, or false while validation is pending.
func (l *Live) Verdict() (Verdict, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verdict == nil {
		return Verdict{}, false
	}
	return *l.verdict, true
}

// Input returns the current draft.
func (l *Live) Input() Input {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.input
}
