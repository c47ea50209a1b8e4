// Package schedtest provides deterministic frame sources and clocks for
// driving a sched.Runtime from tests.
package schedtest

import (
	"sort"
	"sync"
	"time"

	"github.com/delaneyj/tickflow/sched"
)

// ManualFrames delivers a frame only when Step is called.
type ManualFrames struct {
	c    chan time.Time
	once sync.Once
	done chan struct{}
}

func NewManualFrames() *ManualFrames {
	return &ManualFrames{
		c:    make(chan time.Time),
		done: make(chan struct{}),
	}
}

func (f *ManualFrames) Frames() <-chan time.Time {
	return f.c
}

func (f *ManualFrames) Stop() {
	f.once.Do(func() { close(f.done) })
}

// Step blocks until the loop has accepted a frame. It returns false if the
// frame source was stopped first.
func (f *ManualFrames) Step() bool {
	select {
	case f.c <- time.Now():
		return true
	case <-f.done:
		return false
	}
}

// ManualClock only moves when Advance is called. Due callbacks run on the
// goroutine calling Advance, in deadline order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Duration
	period  time.Duration
	seq     int
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (c *ManualClock) add(d, period time.Duration, f func()) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{
		clock:  c,
		at:     c.now + d,
		period: period,
		seq:    c.seq,
		f:      f,
	}
	c.timers = append(c.timers, t)
	return t
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) sched.Timer {
	return c.add(d, 0, f)
}

func (c *ManualClock) TickFunc(d time.Duration, f func()) sched.Timer {
	return c.add(d, d, f)
}

// Now is the time elapsed since the clock was created.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending is the number of timers that may still fire.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer that comes due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.next(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		if next.period > 0 {
			next.at += next.period
		} else {
			next.stopped = true
		}
		f := next.f
		c.mu.Unlock()

		f()
	}
}

func (c *ManualClock) next(target time.Duration) *manualTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at != c.timers[j].at {
			return c.timers[i].at < c.timers[j].at
		}
		return c.timers[i].seq < c.timers[j].seq
	})
	if len(c.timers) == 0 || c.timers[0].at > target {
		return nil
	}
	return c.timers[0]
}
