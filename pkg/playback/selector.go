package playback

import "time"

// FrameNumber returns the frame that itemTime falls on. Times round to the
// nearest frame start, so a time exactly on a boundary belongs to the later
// frame: (100ms, 330ms) is 0, (330ms, 330ms) is 1, (600ms, 330ms) is 2.
// Decode engines report presentation times with the same convention, which
// keeps color and alpha numbering identical.
func FrameNumber(itemTime, frameDuration time.Duration) int {
	if frameDuration <= 0 || itemTime <= 0 {
		return 0
	}
	return int((itemTime + frameDuration/2) / frameDuration)
}

// FrameTime returns the item time at which frame n starts.
func FrameTime(n int, frameDuration time.Duration) time.Duration {
	return time.Duration(n) * frameDuration
}

// Selector picks the frame for an item time from the two buffered frames
// of a stream. Once frame N has been returned, nothing older than N is
// returned again until Reset.
type Selector struct {
	frameDuration time.Duration
	lastFrame     int
	lastReturned  int
}

// NewSelector creates a Selector for frames of frameDuration, the last of
// which is numbered lastFrame.
func NewSelector(frameDuration time.Duration, lastFrame int) Selector {
	return Selector{
		frameDuration: frameDuration,
		lastFrame:     lastFrame,
		lastReturned:  -1,
	}
}

// Target returns the frame number wanted at itemTime, clamped to the last frame.
func (s *Selector) Target(itemTime time.Duration) int {
	n := FrameNumber(itemTime, s.frameDuration)
	if n > s.lastFrame {
		n = s.lastFrame
	}
	return n
}

// LastReturned returns the most recent frame number handed out, or -1.
func (s *Selector) LastReturned() int {
	return s.lastReturned
}

// Select returns the frame for itemTime from the previous and current slots.
// An exact match wins; otherwise the current frame is accepted when it is at
// most one frame ahead. Anything else is ErrFrameNotYetAvailable.
func (s *Selector) Select(itemTime time.Duration, previous, current *Frame) (*Frame, error) {
	want := s.Target(itemTime)

	var pick *Frame
	switch {
	case current != nil && current.Number == want:
		pick = current
	case previous != nil && previous.Number == want:
		pick = previous
	case current != nil && current.Number > want && current.Number-want <= 1:
		pick = current
	}
	if pick == nil || pick.Number < s.lastReturned {
		return nil, ErrFrameNotYetAvailable
	}
	s.lastReturned = pick.Number
	return pick, nil
}

// Reset forgets the monotonic floor, used when the stream seeks.
func (s *Selector) Reset() {
	s.lastReturned = -1
}
