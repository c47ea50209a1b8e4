package flow

import (
	"fmt"
	"log/slog"
	"sort"
)

// Body is a program: it runs once against its ProcState, declaring channels,
// watchers and timed mutations.
type Body func(p *ProcState) error

// ProcState is the surface a running program sees.
type ProcState struct {
	tracker    *Tracker
	timers     Timers
	logger     *slog.Logger
	channels   map[string]*Mutable[int]
	yieldValue int
	tasks      []*Task
}

func NewProcState(opts ...Option) *ProcState {
	o := newOptions(opts)
	return &ProcState{
		tracker:  newTracker(o),
		timers:   o.timers,
		logger:   o.logger,
		channels: map[string]*Mutable[int]{},
	}
}

func (p *ProcState) Tracker() *Tracker {
	return p.tracker
}

// Output is the most recently yielded value.
func (p *ProcState) Output() int {
	return p.yieldValue
}

// Local binds name to a fresh mutable channel, replacing any previous
// binding. Watchers subscribed to the old channel stay with it.
func (p *ProcState) Local(name string, v int) *Mutable[int] {
	p.logger.Debug("flow: local", "name", name, "value", v)
	ch := NewMutable(p.tracker, name, v)
	p.channels[name] = ch
	return ch
}

// RefCell returns the channel bound to name.
func (p *ProcState) RefCell(name string) (*Mutable[int], error) {
	ch, ok := p.channels[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownReference, name)
	}
	return ch, nil
}

// Ref reads the channel bound to name.
func (p *ProcState) Ref(name string) (int, error) {
	p.logger.Debug("flow: ref", "name", name)
	ch, err := p.RefCell(name)
	if err != nil {
		return 0, err
	}
	return ch.Get(), nil
}

// Assign writes v to the channel bound to name and returns the value read
// back after the write, including anything the cascade changed. The read
// back is untracked so a watcher writing a channel does not depend on it.
func (p *ProcState) Assign(name string, v int) (int, error) {
	p.logger.Debug("flow: ref", "name", name, "value", v)
	ch, err := p.RefCell(name)
	if err != nil {
		return 0, err
	}
	if err := ch.Set(v); err != nil {
		return 0, err
	}
	return ch.Peek(), nil
}

// Watch runs effect now and again whenever a channel it read changes.
func (p *ProcState) Watch(effect func() error) (*Watcher, error) {
	return p.tracker.Watch(effect)
}

// Yield makes v the program's output. An int is wrapped in a Constant; a
// Channel keeps Output in step with every later change of that channel.
func (p *ProcState) Yield(v any) (int, error) {
	var ch Channel[int]
	switch v := v.(type) {
	case int:
		ch = Const(v)
	case Channel[int]:
		ch = v
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedYield, v)
	}

	_, err := p.tracker.Watch(func() error {
		p.yieldValue = ch.Get()
		return nil
	})
	if err != nil {
		return 0, err
	}
	value := ch.Get()
	p.logger.Debug("flow: yield", "value", value)
	return value, nil
}

// After runs body once, time from now.
func (p *ProcState) After(time string, body Body) (*Task, error) {
	return p.schedule(time, false, body)
}

// Every runs body each period until cancelled or the program closes.
func (p *ProcState) Every(time string, body Body) (*Task, error) {
	return p.schedule(time, true, body)
}

func (p *ProcState) schedule(spec string, repeat bool, body Body) (*Task, error) {
	d, err := ParseDuration(spec)
	if err != nil {
		return nil, err
	}
	if repeat && d <= 0 {
		return nil, fmt.Errorf("%w: '%s' is not a positive period", ErrUnsupportedDuration, spec)
	}
	if p.timers == nil {
		return nil, ErrNoTimers
	}

	t := &Task{spec: spec, period: d, repeat: repeat}
	p.logger.Debug("flow: schedule", "task", t.String())
	fn := t.wrap(func() error {
		return body(p)
	})
	if repeat {
		t.cancel = p.timers.Every(d, fn)
	} else {
		t.cancel = p.timers.After(d, fn)
	}
	p.tasks = append(p.tasks, t)
	return t, nil
}

// Tasks returns every task registered so far, finished ones included.
func (p *ProcState) Tasks() []*Task {
	return append([]*Task(nil), p.tasks...)
}

// Close cancels all outstanding tasks.
func (p *ProcState) Close() {
	for _, t := range p.tasks {
		t.Cancel()
	}
}

type ChannelInfo struct {
	Name        string
	Value       int
	Subscribers int
}

// Channels is a snapshot of every bound channel, sorted by name.
func (p *ProcState) Channels() []ChannelInfo {
	infos := make([]ChannelInfo, 0, len(p.channels))
	for name, ch := range p.channels {
		infos = append(infos, ChannelInfo{
			Name:        name,
			Value:       ch.Peek(),
			Subscribers: ch.Subscribers(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
