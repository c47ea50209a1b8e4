package sched

import (
	"log/slog"
)

type options struct {
	fps      int
	frames   FrameSource
	stop     <-chan struct{}
	clock    Clock
	observer Observer
	logger   *slog.Logger
	maxDepth int
	inbox    int
}

type Option func(*options)

// WithFPS sets the frame rate of the default ticker frame source.
func WithFPS(fps int) Option {
	return func(o *options) {
		o.fps = fps
	}
}

func WithFrames(frames FrameSource) Option {
	return func(o *options) {
		o.frames = frames
	}
}

// WithStop sets the stop signal. Closing stop ends the run after one more
// tick.
func WithStop(stop <-chan struct{}) Option {
	return func(o *options) {
		o.stop = stop
	}
}

func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxDepth is passed to the program's tracker, see flow.WithMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}
