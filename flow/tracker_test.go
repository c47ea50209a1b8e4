package flow_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/delaneyj/tickflow/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher(t *testing.T) {
	t.Run("stays subscribed across re-runs", func(t *testing.T) {
		tr := flow.NewTracker()
		x := flow.NewMutable(tr, "x", 0)

		seen := []int{}
		w, err := tr.Watch(func() error {
			seen = append(seen, x.Get())
			return nil
		})
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			require.NoError(t, x.Set(i))
		}
		assert.Equal(t, []int{0, 1, 2, 3}, seen)
		assert.Equal(t, 4, w.Runs())
		assert.Equal(t, 1, x.Subscribers())
	})

	t.Run("drops channels the last run did not read", func(t *testing.T) {
		tr := flow.NewTracker()
		useA := flow.NewMutable(tr, "useA", true)
		a := flow.NewMutable(tr, "a", 1)
		b := flow.NewMutable(tr, "b", 2)

		w, err := tr.Watch(func() error {
			if useA.Get() {
				a.Get()
			} else {
				b.Get()
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, a.Subscribers())
		assert.Equal(t, 0, b.Subscribers())

		require.NoError(t, useA.Set(false))
		assert.Equal(t, 2, w.Runs())
		assert.Equal(t, 0, a.Subscribers())
		assert.Equal(t, 1, b.Subscribers())
		assert.Equal(t, 2, w.Sources())

		require.NoError(t, a.Set(5))
		assert.Equal(t, 2, w.Runs())

		require.NoError(t, b.Set(7))
		assert.Equal(t, 3, w.Runs())
	})

	t.Run("stop", func(t *testing.T) {
		tr := flow.NewTracker()
		a := flow.NewMutable(tr, "a", 1)

		w, err := tr.Watch(func() error {
			a.Get()
			return nil
		})
		require.NoError(t, err)

		w.Stop()
		assert.True(t, w.Stopped())
		assert.Equal(t, 0, a.Subscribers())

		require.NoError(t, a.Set(2))
		assert.Equal(t, 1, w.Runs())
	})

	t.Run("untrack", func(t *testing.T) {
		tr := flow.NewTracker()
		a := flow.NewMutable(tr, "a", 1)
		b := flow.NewMutable(tr, "b", 1)

		_, err := tr.Watch(func() error {
			b.Get()
			return tr.Untrack(func() error {
				a.Get()
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 0, a.Subscribers())
		assert.Equal(t, 1, b.Subscribers())
	})
}

func TestWatcherStackDepth(t *testing.T) {
	tr := flow.NewTracker()
	boom := errors.New("boom")

	depths := []int{}
	_, err := tr.Watch(func() error {
		depths = append(depths, tr.Depth())
		_, err := tr.Watch(func() error {
			depths = append(depths, tr.Depth())
			return boom
		})
		depths = append(depths, tr.Depth())
		return err
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2, 1}, depths)
	assert.Equal(t, 0, tr.Depth())
	assert.Nil(t, tr.Active())

	assert.Panics(t, func() {
		tr.Watch(func() error {
			panic("watcher panic")
		})
	})
	assert.Equal(t, 0, tr.Depth())
}

func TestCascadeReentrancy(t *testing.T) {
	tr := flow.NewTracker()
	a := flow.NewMutable(tr, "a", 1)
	b := flow.NewMutable(tr, "b", 0)

	log := []string{}
	_, err := tr.Watch(func() error {
		log = append(log, fmt.Sprintf("b=%d", b.Get()))
		return nil
	})
	require.NoError(t, err)

	_, err = tr.Watch(func() error {
		v := a.Get()
		log = append(log, fmt.Sprintf("a=%d", v))
		return b.Set(v * 10)
	})
	require.NoError(t, err)

	require.NoError(t, a.Set(2))
	log = append(log, "set returned")

	assert.Equal(t, []string{
		"b=0",
		"a=1",
		"b=10",
		"a=2",
		"b=20",
		"set returned",
	}, log)
}

func TestSubscriberErrorAbortsCascade(t *testing.T) {
	tr := flow.NewTracker()
	a := flow.NewMutable(tr, "a", 1)
	boom := errors.New("boom")

	_, err := tr.Watch(func() error {
		if a.Get() == 2 {
			return boom
		}
		return nil
	})
	require.NoError(t, err)

	second, err := tr.Watch(func() error {
		a.Get()
		return nil
	})
	require.NoError(t, err)

	assert.ErrorIs(t, a.Set(2), boom)
	assert.Equal(t, 1, second.Runs())
	assert.Equal(t, 2, a.Peek(), "the write itself is kept")
}

func TestCycleDetection(t *testing.T) {
	tr := flow.NewTracker(flow.WithMaxDepth(10))
	a := flow.NewMutable(tr, "a", 0)
	b := flow.NewMutable(tr, "b", 0)

	_, err := tr.Watch(func() error {
		return b.Set(a.Get() + 1)
	})
	require.NoError(t, err)

	_, err = tr.Watch(func() error {
		return a.Set(b.Get() + 1)
	})
	assert.ErrorIs(t, err, flow.ErrCycleDetected)
	assert.Equal(t, 0, tr.Depth())

	t.Run("converging writes are not cycles", func(t *testing.T) {
		tr := flow.NewTracker(flow.WithMaxDepth(10))
		a := flow.NewMutable(tr, "a", 0)
		b := flow.NewMutable(tr, "b", 0)

		_, err := tr.Watch(func() error {
			return b.Set(a.Get())
		})
		require.NoError(t, err)
		_, err = tr.Watch(func() error {
			return a.Set(b.Get())
		})
		require.NoError(t, err)

		require.NoError(t, a.Set(3))
		assert.Equal(t, 3, b.Peek())
	})
}
