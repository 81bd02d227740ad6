// Package hostclock provides the monotonic host clock playback is measured against.
package hostclock

import (
	"sync/atomic"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// Clock reports host time as the monotonic offset from its creation.
// A Clock rebased onto a master reports the master's time instead, so
// independent players sharing one master stay in phase.
type Clock struct {
	origin time.Time
	master atomic.Pointer[masterRef]
}

type masterRef struct {
	clock ports.HostClock
}

// New creates a Clock whose origin is now.
func New() *Clock {
	return &Clock{origin: time.Now()}
}

// Now returns the current host time.
func (c *Clock) Now() time.Duration {
	if m := c.master.Load(); m != nil {
		return m.clock.Now()
	}
	return time.Since(c.origin)
}

// Rebase makes the clock follow master. A nil master returns to the local origin.
func (c *Clock) Rebase(master ports.HostClock) {
	if master == nil || master == ports.HostClock(c) {
		c.master.Store(nil)
		return
	}
	c.master.Store(&masterRef{clock: master})
}

// Rebased reports whether the clock follows a master.
func (c *Clock) Rebased() bool {
	return c.master.Load() != nil
}

// Ensure Clock implements ports.HostClock
var _ ports.HostClock = (*Clock)(nil)
