package sched

import (
	"sync"
	"time"
)

// Timer is a pending AfterFunc or TickFunc registration.
type Timer interface {
	Stop() bool
}

// Clock creates the timers behind After and Every. Callbacks run on a
// goroutine owned by the clock, never on the loop.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	TickFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (systemClock) TickFunc(d time.Duration, f func()) Timer {
	t := &tickTimer{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				f()
			}
		}
	}()
	return t
}

type tickTimer struct {
	ticker *time.Ticker
	once   sync.Once
	done   chan struct{}
}

func (t *tickTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
