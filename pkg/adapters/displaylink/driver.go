// Package displaylink provides a ticker-backed display refresh driver.
package displaylink

import (
	"context"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// DefaultRefreshRate is used when no rate is given.
const DefaultRefreshRate = 60

// Driver delivers refresh ticks at a fixed rate, stamped with the host clock.
// Like a display link, a tick the consumer is too busy to take is skipped
// rather than queued.
type Driver struct {
	clock    ports.HostClock
	interval time.Duration
	latency  time.Duration
}

// New creates a Driver firing hz times per second.
// Frames chosen on a tick are presented one interval later.
func New(clock ports.HostClock, hz int) *Driver {
	if hz <= 0 {
		hz = DefaultRefreshRate
	}
	interval := time.Second / time.Duration(hz)
	return &Driver{clock: clock, interval: interval, latency: interval}
}

// WithLatency overrides the delay between a tick and its presentation.
func (d *Driver) WithLatency(latency time.Duration) *Driver {
	if latency >= 0 {
		d.latency = latency
	}
	return d
}

// Interval returns the refresh interval.
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Ticks starts the driver. The channel is closed when ctx is done.
func (d *Driver) Ticks(ctx context.Context) <-chan ports.Tick {
	ch := make(chan ports.Tick, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := d.clock.Now()
				select {
				case ch <- ports.Tick{HostTime: now, PresentationTime: now + d.latency}:
				default:
				}
			}
		}
	}()
	return ch
}

// Ensure Driver implements ports.RefreshDriver
var _ ports.RefreshDriver = (*Driver)(nil)
