package playback

import (
	"fmt"
	"time"
)

// SyncAnchor ties a media position to a host time at a given rate.
// Item time for any later host time is
// ItemTime + Rate * (hostTime - HostTime).
type SyncAnchor struct {
	Rate     float64
	ItemTime time.Duration
	HostTime time.Duration
}

// ItemTimeAt returns the unclamped item time at hostTime.
func (a SyncAnchor) ItemTimeAt(hostTime time.Duration) time.Duration {
	elapsed := hostTime - a.HostTime
	return a.ItemTime + scale(elapsed, a.Rate)
}

// HostTimeAt returns the host time at which itemTime is reached.
// The second result is false for a paused anchor.
func (a SyncAnchor) HostTimeAt(itemTime time.Duration) (time.Duration, bool) {
	if a.Rate <= 0 {
		return 0, false
	}
	return a.HostTime + scale(itemTime-a.ItemTime, 1/a.Rate), true
}

func (a SyncAnchor) String() string {
	return fmt.Sprintf("anchor(rate %.2f, item %s @ host %s)", a.Rate, a.ItemTime, a.HostTime)
}

// Mapping is a resolved item time.
type Mapping struct {
	// ItemTime is clamped to [0, clip duration].
	ItemTime time.Duration

	// Complete is set once the unclamped item time reaches the clip end,
	// i.e. the final frame has been held for its full display interval.
	Complete bool
}

// Mapper converts host time to item time for one stream. It holds at most one
// live anchor; replacing it is a single assignment on the presentation context.
type Mapper struct {
	anchor   SyncAnchor
	anchored bool
	duration time.Duration
}

// NewMapper creates a Mapper for a clip of the given duration.
func NewMapper(duration time.Duration) Mapper {
	return Mapper{duration: duration}
}

// SetDuration updates the clip bound, used once the asset is loaded.
func (m *Mapper) SetDuration(duration time.Duration) {
	m.duration = duration
}

// Anchor replaces the live anchor.
func (m *Mapper) Anchor(a SyncAnchor) {
	m.anchor = a
	m.anchored = true
}

// Clear drops the live anchor. Map is unresolvable until the next Anchor.
func (m *Mapper) Clear() {
	m.anchor = SyncAnchor{}
	m.anchored = false
}

// Current returns the live anchor, if any.
func (m *Mapper) Current() (SyncAnchor, bool) {
	return m.anchor, m.anchored
}

// Map resolves hostTime. It returns ErrUnresolvable when no anchor is set
// or when hostTime maps before the start of the clip.
func (m *Mapper) Map(hostTime time.Duration) (Mapping, error) {
	if !m.anchored {
		return Mapping{}, ErrUnresolvable
	}
	t := m.anchor.ItemTimeAt(hostTime)
	if t < 0 {
		return Mapping{}, ErrUnresolvable
	}
	if t >= m.duration {
		return Mapping{ItemTime: m.duration, Complete: true}, nil
	}
	return Mapping{ItemTime: t}, nil
}

// scale multiplies a duration by a float factor, rounding to the nearest nanosecond.
func scale(d time.Duration, factor float64) time.Duration {
	if factor == 1 {
		return d
	}
	v := float64(d) * factor
	if v < 0 {
		return time.Duration(v - 0.5)
	}
	return time.Duration(v + 0.5)
}
