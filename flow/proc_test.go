package flow_test

import (
	"testing"
	"time"

	"github.com/delaneyj/tickflow/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d         time.Duration
	repeat    bool
	fn        func() error
	cancelled bool
}

type fakeTimers struct {
	timers []*fakeTimer
}

func (f *fakeTimers) add(d time.Duration, repeat bool, fn func() error) func() {
	t := &fakeTimer{d: d, repeat: repeat, fn: fn}
	f.timers = append(f.timers, t)
	return func() { t.cancelled = true }
}

func (f *fakeTimers) After(d time.Duration, fn func() error) func() {
	return f.add(d, false, fn)
}

func (f *fakeTimers) Every(d time.Duration, fn func() error) func() {
	return f.add(d, true, fn)
}

func TestYieldTracksChannel(t *testing.T) {
	p := flow.NewProcState()
	p.Local("a", 1)
	a, err := p.RefCell("a")
	require.NoError(t, err)

	v, err := p.Yield(a)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, p.Output())

	got, err := p.Assign("a", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, 2, p.Output())
}

func TestYieldConstant(t *testing.T) {
	p := flow.NewProcState()
	v, err := p.Yield(7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 7, p.Output())

	_, err = p.Yield(flow.Const(9))
	require.NoError(t, err)
	assert.Equal(t, 9, p.Output())

	_, err = p.Yield("nope")
	assert.ErrorIs(t, err, flow.ErrUnsupportedYield)
}

func TestRefUnknown(t *testing.T) {
	p := flow.NewProcState()
	_, err := p.Ref("missing")
	assert.ErrorIs(t, err, flow.ErrUnknownReference)
	_, err = p.Assign("missing", 1)
	assert.ErrorIs(t, err, flow.ErrUnknownReference)
	_, err = p.RefCell("missing")
	assert.ErrorIs(t, err, flow.ErrUnknownReference)
}

func TestLocalReplacesBinding(t *testing.T) {
	p := flow.NewProcState()
	old := p.Local("a", 1)
	_, err := p.Yield(old)
	require.NoError(t, err)

	p.Local("a", 5)
	v, err := p.Ref("a")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = p.Assign("a", 9)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Output(), "yield still follows the old channel")
	assert.Equal(t, 1, old.Subscribers())
}

func TestProcWatch(t *testing.T) {
	p := flow.NewProcState()
	p.Local("a", 1)
	p.Local("double", 0)

	_, err := p.Watch(func() error {
		v, err := p.Ref("a")
		if err != nil {
			return err
		}
		_, err = p.Assign("double", v*2)
		return err
	})
	require.NoError(t, err)

	double, err := p.RefCell("double")
	require.NoError(t, err)
	_, err = p.Yield(double)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Output())

	_, err = p.Assign("a", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, p.Output())

	assert.Equal(t, []flow.ChannelInfo{
		{Name: "a", Value: 21, Subscribers: 1},
		{Name: "double", Value: 42, Subscribers: 1},
	}, p.Channels())
}

func TestAfter(t *testing.T) {
	timers := &fakeTimers{}
	p := flow.NewProcState(flow.WithTimers(timers))
	a := p.Local("a", 1)
	_, err := p.Yield(a)
	require.NoError(t, err)

	task, err := p.After("1s", func(p *flow.ProcState) error {
		_, err := p.Assign("a", 2)
		return err
	})
	require.NoError(t, err)
	require.Len(t, timers.timers, 1)
	assert.Equal(t, time.Second, timers.timers[0].d)
	assert.False(t, timers.timers[0].repeat)
	assert.Equal(t, "after 1s", task.String())
	assert.Equal(t, 1, p.Output())

	require.NoError(t, timers.timers[0].fn())
	assert.Equal(t, 2, p.Output())
	assert.EqualValues(t, 1, task.Fired())
	assert.True(t, task.Done())

	// a stray second delivery is ignored
	require.NoError(t, a.Set(3))
	require.NoError(t, timers.timers[0].fn())
	assert.Equal(t, 3, p.Output())
	assert.EqualValues(t, 1, task.Fired())
}

func TestEvery(t *testing.T) {
	timers := &fakeTimers{}
	p := flow.NewProcState(flow.WithTimers(timers))
	p.Local("n", 0)

	task, err := p.Every("250ms", func(p *flow.ProcState) error {
		n, err := p.Ref("n")
		if err != nil {
			return err
		}
		_, err = p.Assign("n", n+1)
		return err
	})
	require.NoError(t, err)
	assert.True(t, task.Repeating())
	assert.Equal(t, 250*time.Millisecond, task.Period())

	for i := 0; i < 3; i++ {
		require.NoError(t, timers.timers[0].fn())
	}
	n, err := p.Ref("n")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, task.Done())

	task.Cancel()
	assert.True(t, timers.timers[0].cancelled)
	require.NoError(t, timers.timers[0].fn())
	assert.EqualValues(t, 3, task.Fired())
}

func TestScheduleErrors(t *testing.T) {
	p := flow.NewProcState()
	_, err := p.After("1s", func(*flow.ProcState) error { return nil })
	assert.ErrorIs(t, err, flow.ErrNoTimers)

	p = flow.NewProcState(flow.WithTimers(&fakeTimers{}))
	_, err = p.After("1m", func(*flow.ProcState) error { return nil })
	assert.ErrorIs(t, err, flow.ErrUnsupportedDuration)
	_, err = p.Every("0ms", func(*flow.ProcState) error { return nil })
	assert.ErrorIs(t, err, flow.ErrUnsupportedDuration)
}

func TestCloseCancelsTasks(t *testing.T) {
	timers := &fakeTimers{}
	p := flow.NewProcState(flow.WithTimers(timers))
	noop := func(*flow.ProcState) error { return nil }

	_, err := p.After("1s", noop)
	require.NoError(t, err)
	_, err = p.Every("1s", noop)
	require.NoError(t, err)

	p.Close()
	for _, task := range p.Tasks() {
		assert.True(t, task.Done())
	}
	for _, timer := range timers.timers {
		assert.True(t, timer.cancelled)
	}
}

func TestConstYieldedChannelRejectsWrites(t *testing.T) {
	p := flow.NewProcState()
	var ch flow.Channel[int] = flow.Const(4)
	_, err := p.Yield(ch)
	require.NoError(t, err)
	assert.ErrorIs(t, ch.Set(5), flow.ErrConstViolation)
	assert.Equal(t, 4, p.Output())
}
