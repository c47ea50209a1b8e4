package flow

import "fmt"

// Channel is a readable, possibly writable value cell. It has exactly two
// implementations, Constant and *Mutable.
type Channel[T comparable] interface {
	Get() T
	Set(v T) error
	isChannel()
}

// Constant never changes and never notifies.
type Constant[T comparable] struct {
	value T
}

func Const[T comparable](v T) Constant[T] {
	return Constant[T]{value: v}
}

func (c Constant[T]) isChannel() {}

func (c Constant[T]) Get() T {
	return c.value
}

func (c Constant[T]) Set(v T) error {
	return fmt.Errorf("%w (value %v)", ErrConstViolation, v)
}

// Mutable is a change-gated value cell. Reads made while a watcher is
// evaluating subscribe that watcher.
type Mutable[T comparable] struct {
	name    string
	value   T
	tracker *Tracker
	dep     *Dep
}

func NewMutable[T comparable](t *Tracker, name string, v T) *Mutable[T] {
	return &Mutable[T]{
		name:    name,
		value:   v,
		tracker: t,
		dep:     newDep(),
	}
}

func (m *Mutable[T]) isChannel() {}

func (m *Mutable[T]) Name() string {
	return m.name
}

// Get returns the value and subscribes the tracker's active watcher, if any.
func (m *Mutable[T]) Get() T {
	return m.GetFor(m.tracker.Active())
}

// GetFor returns the value and subscribes w when it is non-nil.
func (m *Mutable[T]) GetFor(w *Watcher) T {
	m.tracker.logger.Debug("flow: channel get", "name", m.name, "value", m.value)
	if w != nil && m.dep.Depend(w) {
		w.link(m)
	}
	return m.value
}

// Peek returns the value without subscribing anything.
func (m *Mutable[T]) Peek() T {
	return m.value
}

// Set stores v and synchronously re-runs every subscriber when v differs
// from the current value. Writing an equal value is a no-op.
func (m *Mutable[T]) Set(v T) error {
	m.tracker.logger.Debug("flow: channel set", "name", m.name, "value", v)
	if m.value == v {
		return nil
	}
	m.value = v
	if m.dep.Len() == 0 {
		return nil
	}
	return m.tracker.notify(m.dep.Notify)
}

// Subscribers is the number of watchers currently depending on m.
func (m *Mutable[T]) Subscribers() int {
	return m.dep.Len()
}

func (m *Mutable[T]) Dep() *Dep {
	return m.dep
}

func (m *Mutable[T]) unsubscribe(w *Watcher) {
	m.dep.Remove(w)
}
