package flow

import "log/slog"

type options struct {
	maxDepth int
	logger   *slog.Logger
	timers   Timers
}

type Option func(*options)

// WithMaxDepth bounds how deeply notification cascades may nest before
// failing with ErrCycleDetected. Zero disables the limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimers sets the host that runs After and Every bodies.
func WithTimers(timers Timers) Option {
	return func(o *options) {
		o.timers = timers
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
