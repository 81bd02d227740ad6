package mocks

import (
	"context"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// Driver is a ports.RefreshDriver that replays a fixed list of ticks.
type Driver struct {
	TickList      []ports.Tick
	IntervalValue time.Duration

	// OnTick, if set, runs before each tick is delivered, e.g. to advance a mock clock.
	OnTick func(ports.Tick)
}

// NewDriver creates a driver emitting count ticks every interval from start.
// Presentation times lead host times by one interval.
func NewDriver(start, interval time.Duration, count int) *Driver {
	ticks := make([]ports.Tick, count)
	for i := range ticks {
		host := start + time.Duration(i)*interval
		ticks[i] = ports.Tick{HostTime: host, PresentationTime: host + interval}
	}
	return &Driver{TickList: ticks, IntervalValue: interval}
}

func (m *Driver) Ticks(ctx context.Context) <-chan ports.Tick {
	ch := make(chan ports.Tick)
	go func() {
		defer close(ch)
		for _, t := range m.TickList {
			if m.OnTick != nil {
				m.OnTick(t)
			}
			select {
			case ch <- t:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (m *Driver) Interval() time.Duration {
	return m.IntervalValue
}

var _ ports.RefreshDriver = (*Driver)(nil)
