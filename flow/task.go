package flow

import (
	"sync/atomic"
	"time"
)

// Timers runs task bodies on the program's loop after a delay or
// periodically. The returned func cancels the timer.
type Timers interface {
	After(d time.Duration, fn func() error) (cancel func())
	Every(d time.Duration, fn func() error) (cancel func())
}

// Task is a scheduled After or Every registration.
type Task struct {
	spec      string
	period    time.Duration
	repeat    bool
	cancel    func()
	done      atomic.Bool
	fired     atomic.Int64
}

func (t *Task) String() string {
	if t.repeat {
		return "every " + t.spec
	}
	return "after " + t.spec
}

func (t *Task) Period() time.Duration {
	return t.period
}

func (t *Task) Repeating() bool {
	return t.repeat
}

// Fired counts executed bodies.
func (t *Task) Fired() int64 {
	return t.fired.Load()
}

// Cancel stops the timer. A body already queued on the loop is skipped.
func (t *Task) Cancel() {
	if !t.done.CompareAndSwap(false, true) {
		return
	}
	if t.cancel != nil {
		t.cancel()
	}
}

// Done reports whether the task will never run its body again.
func (t *Task) Done() bool {
	return t.done.Load()
}

func (t *Task) wrap(fn func() error) func() error {
	return func() error {
		if t.done.Load() {
			return nil
		}
		t.fired.Add(1)
		if !t.repeat {
			t.done.Store(true)
		}
		return fn()
	}
}
