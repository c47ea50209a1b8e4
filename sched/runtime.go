package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/delaneyj/tickflow/flow"
	"github.com/google/uuid"
	"github.com/petermattis/goid"
)

var (
	// ErrStopped is returned by Post once the loop has exited.
	ErrStopped = errors.New("runtime stopped")

	// ErrStarted is returned by a second call to Run.
	ErrStarted = errors.New("runtime already started")
)

// Sink receives the program output once per tick.
type Sink interface {
	Render(value int) error
}

// Observer is told how long each tick took.
type Observer interface {
	Observe(d time.Duration)
}

type State int32

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Runtime drives one program: it runs the body, then ticks on every frame,
// forwarding the current output to the sink until the stop signal is seen.
// Timer bodies and ticks all execute on the goroutine that called Run.
type Runtime struct {
	id       string
	body     flow.Body
	proc     *flow.ProcState
	sink     Sink
	frames   FrameSource
	stop     <-chan struct{}
	clock    Clock
	observer Observer
	logger   *slog.Logger

	inbox   chan func() error
	done    chan struct{}
	started atomic.Bool
	loopID  atomic.Int64
	state  atomic.Int32
	ticks  atomic.Int64
	value  atomic.Int64
	alive  bool
}

func New(body flow.Body, sink Sink, opts ...Option) *Runtime {
	o := &options{
		clock:    SystemClock,
		logger:   slog.Default(),
		maxDepth: flow.DefaultMaxDepth,
		inbox:    64,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.frames == nil {
		o.frames = NewTickerFrames(o.fps)
	}

	r := &Runtime{
		id:       uuid.NewString(),
		body:     body,
		sink:     sink,
		frames:   o.frames,
		stop:     o.stop,
		clock:    o.clock,
		observer: o.observer,
		inbox:    make(chan func() error, o.inbox),
		done:     make(chan struct{}),
		alive:    true,
	}
	r.logger = o.logger.With("run_id", r.id)
	r.proc = flow.NewProcState(
		flow.WithTimers(r),
		flow.WithLogger(r.logger),
		flow.WithMaxDepth(o.maxDepth),
	)
	return r
}

func (r *Runtime) ID() string {
	return r.id
}

func (r *Runtime) Proc() *flow.ProcState {
	return r.proc
}

func (r *Runtime) State() State {
	return State(r.state.Load())
}

func (r *Runtime) Ticks() int64 {
	return r.ticks.Load()
}

// Value is the output forwarded by the most recent tick.
func (r *Runtime) Value() int {
	return int(r.value.Load())
}

// Done is closed when Run returns.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}

// Run executes the program body and the tick loop on the calling goroutine.
// It returns nil after the final tick following a stop signal, ctx.Err() if
// ctx ends first, or the first error raised by the body, a timer body, a
// cascade or the sink. A Runtime runs once; later calls return ErrStarted.
func (r *Runtime) Run(ctx context.Context) (err error) {
	if !r.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	r.loopID.Store(goid.Get())
	defer func() {
		r.loopID.Store(0)
		r.state.Store(int32(Stopped))
		r.proc.Close()
		r.frames.Stop()
		close(r.done)
		r.logger.Info("sched: runtime stopped", "ticks", r.Ticks(), "value", r.Value(), "err", err)
	}()

	r.logger.Info("sched: runtime started")
	if err := r.body(r.proc); err != nil {
		return fmt.Errorf("program body: %w", err)
	}

	more, err := r.tick()
	if err != nil || !more {
		return err
	}

	frames := r.frames.Frames()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			r.halt()
		case fn := <-r.inbox:
			if err := fn(); err != nil {
				return fmt.Errorf("task: %w", err)
			}
		case <-frames:
			if err := r.drain(); err != nil {
				return fmt.Errorf("task: %w", err)
			}
			r.pollStop()
			more, err := r.tick()
			if err != nil || !more {
				return err
			}
		}
	}
}

// tick reads the output, decides whether another frame follows, and then
// forwards the value, so the tick that observes a stop still renders.
func (r *Runtime) tick() (more bool, err error) {
	start := time.Now()
	value := r.proc.Output()
	r.value.Store(int64(value))
	more = r.alive
	if err := r.sink.Render(value); err != nil {
		return false, fmt.Errorf("sink: %w", err)
	}
	n := r.ticks.Add(1)
	if r.observer != nil {
		r.observer.Observe(time.Since(start))
	}
	r.logger.Debug("sched: tick", "n", n, "value", value, "alive", more)
	return more, nil
}

func (r *Runtime) halt() {
	if !r.alive {
		return
	}
	r.alive = false
	r.stop = nil
	r.logger.Info("sched: stop signal received", "ticks", r.Ticks())
}

func (r *Runtime) pollStop() {
	select {
	case <-r.stop:
		r.halt()
	default:
	}
}

// drain runs tasks that were due before the current frame.
func (r *Runtime) drain() error {
	for {
		select {
		case fn := <-r.inbox:
			if err := fn(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Post runs fn on the loop. Called from the loop goroutine itself it runs
// inline and returns fn's error; otherwise fn is queued and any error it
// returns ends Run.
func (r *Runtime) Post(fn func() error) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	if id := r.loopID.Load(); id != 0 && goid.Get() == id {
		return fn()
	}
	select {
	case r.inbox <- fn:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

func (r *Runtime) After(d time.Duration, fn func() error) func() {
	t := r.clock.AfterFunc(d, func() {
		r.post(fn)
	})
	return func() { t.Stop() }
}

func (r *Runtime) Every(d time.Duration, fn func() error) func() {
	t := r.clock.TickFunc(d, func() {
		r.post(fn)
	})
	return func() { t.Stop() }
}

func (r *Runtime) post(fn func() error) {
	if err := r.Post(fn); err != nil && !errors.Is(err, ErrStopped) {
		r.logger.Error("sched: timer body failed", "err", err)
	}
}
