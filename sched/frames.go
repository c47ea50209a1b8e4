package sched

import "time"

const DefaultFPS = 60

// FrameSource paces the tick loop, the way a host's animation frame
// callback would.
type FrameSource interface {
	Frames() <-chan time.Time
	Stop()
}

type TickerFrames struct {
	ticker *time.Ticker
}

// NewTickerFrames delivers fps frames per second. Non-positive values fall
// back to DefaultFPS.
func NewTickerFrames(fps int) *TickerFrames {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &TickerFrames{
		ticker: time.NewTicker(time.Second / time.Duration(fps)),
	}
}

func (f *TickerFrames) Frames() <-chan time.Time {
	return f.ticker.C
}

func (f *TickerFrames) Stop() {
	f.ticker.Stop()
}
