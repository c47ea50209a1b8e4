package flow

import "errors"

var (
	// ErrConstViolation is returned when writing a constant channel.
	ErrConstViolation = errors.New("can't set a const channel")

	// ErrUnknownReference is returned when a name was never declared with Local.
	ErrUnknownReference = errors.New("unknown channel")

	// ErrUnsupportedDuration is returned for time strings other than <n>s or <n>ms.
	ErrUnsupportedDuration = errors.New("unsupported time format")

	// ErrCycleDetected is returned when a notification cascade nests deeper
	// than the tracker's MaxDepth.
	ErrCycleDetected = errors.New("cascade depth exceeded, likely a cycle")

	ErrUnsupportedYield = errors.New("unsupported yield value")
	ErrNoTimers         = errors.New("no timer host")
)
