package sched

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
)

// StopOnKey closes the returned channel once anything is read from r.
// On a terminal in canonical mode that means the first line.
func StopOnKey(r io.Reader) <-chan struct{} {
	stop := make(chan struct{})
	go func() {
		defer close(stop)
		buf := make([]byte, 1)
		r.Read(buf)
	}()
	return stop
}

// StopOnSignal closes the returned channel when one of sigs arrives or ctx
// ends. Without sigs it listens for os.Interrupt.
func StopOnSignal(ctx context.Context, sigs ...os.Signal) <-chan struct{} {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt}
	}
	ctx, cancel := signal.NotifyContext(ctx, sigs...)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx.Done()
}

// AnyOf closes the returned channel when any of chs is closed. Nil channels
// are ignored.
func AnyOf(chs ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{})
	var once sync.Once
	for _, ch := range chs {
		if ch == nil {
			continue
		}
		go func(ch <-chan struct{}) {
			<-ch
			once.Do(func() { close(out) })
		}(ch)
	}
	return out
}
