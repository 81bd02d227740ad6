package ports

import (
	"context"
	"time"
)

// Tick is one display refresh.
type Tick struct {
	// HostTime is the host time the refresh callback fired at.
	HostTime time.Duration

	// PresentationTime is the host time the frame chosen now will appear on screen.
	PresentationTime time.Duration
}

// RefreshDriver delivers display refresh ticks, like a display link.
type RefreshDriver interface {
	// Ticks returns a channel of refresh ticks that is closed when ctx is done.
	Ticks(ctx context.Context) <-chan Tick

	// Interval returns the nominal refresh interval.
	Interval() time.Duration
}
