package flow

import (
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
)

const DefaultMaxDepth = 100

// source is a channel a watcher has subscribed to.
type source interface {
	unsubscribe(w *Watcher)
}

// Tracker holds the stack of currently evaluating watchers for one program.
// Only the top of the stack receives subscriptions from channel reads.
// A Tracker is not safe for concurrent use; every program owns its own.
type Tracker struct {
	stack    []*Watcher
	cascade  int
	MaxDepth int
	logger   *slog.Logger
}

func NewTracker(opts ...Option) *Tracker {
	return newTracker(newOptions(opts))
}

func newTracker(o *options) *Tracker {
	return &Tracker{
		MaxDepth: o.maxDepth,
		logger:   o.logger,
	}
}

// Active returns the watcher on top of the stack, or nil when reads are
// untracked.
func (t *Tracker) Active() *Watcher {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// Depth is the number of watchers currently being evaluated.
func (t *Tracker) Depth() int {
	return len(t.stack)
}

// Watch creates a watcher for fn and runs it once to establish its
// subscriptions.
func (t *Tracker) Watch(fn func() error) (*Watcher, error) {
	w := &Watcher{
		tracker: t,
		fn:      fn,
		sources: mapset.NewThreadUnsafeSet[source](),
	}
	if err := w.run(); err != nil {
		return w, err
	}
	return w, nil
}

// Untrack runs fn with no active watcher, so reads inside it subscribe
// nothing.
func (t *Tracker) Untrack(fn func() error) error {
	return t.with(nil, fn)
}

func (t *Tracker) with(w *Watcher, fn func() error) error {
	n := len(t.stack)
	t.stack = append(t.stack, w)
	defer func() {
		clear(t.stack[n:])
		t.stack = t.stack[:n]
	}()
	return fn()
}

func (t *Tracker) notify(notify func() error) error {
	if t.MaxDepth > 0 && t.cascade >= t.MaxDepth {
		return fmt.Errorf("%w: depth %d", ErrCycleDetected, t.cascade)
	}
	t.cascade++
	defer func() { t.cascade-- }()
	return notify()
}

// Watcher is an effect re-run whenever a channel it read during its last run
// changes.
type Watcher struct {
	tracker *Tracker
	fn      func() error
	sources mapset.Set[source]
	runs    int
	stopped bool
}

// Runs reports how many times the effect body has executed.
func (w *Watcher) Runs() int {
	return w.runs
}

// Sources is the number of channels the watcher is subscribed to.
func (w *Watcher) Sources() int {
	return w.sources.Cardinality()
}

// Stop unsubscribes the watcher from everything; it never runs again.
func (w *Watcher) Stop() {
	w.stopped = true
	w.unlink()
}

func (w *Watcher) Stopped() bool {
	return w.stopped
}

// run drops the subscriptions of the previous run before re-evaluating, so
// afterwards the watcher depends on exactly the channels this run read.
func (w *Watcher) run() error {
	if w.stopped {
		return nil
	}
	w.unlink()
	w.runs++
	return w.tracker.with(w, w.fn)
}

func (w *Watcher) link(s source) {
	w.sources.Add(s)
}

func (w *Watcher) unlink() {
	for _, s := range w.sources.ToSlice() {
		s.unsubscribe(w)
	}
	w.sources.Clear()
}
