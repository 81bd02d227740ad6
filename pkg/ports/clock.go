package ports

import "time"

// HostClock is the monotonic time authority all playback is measured against.
// Host times are offsets from an arbitrary, fixed origin.
type HostClock interface {
	// Now returns the current host time.
	Now() time.Duration
}
