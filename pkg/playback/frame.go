package playback

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// Frame is one decoded instant of a clip. Frames are read-only values:
// the buffers stay owned by the Output that produced them and are released
// when the Output supersedes them and no other holder retains the frame.
type Frame struct {
	// Color is the color buffer. Always set.
	Color ports.PixelBuffer

	// Alpha is the matte buffer, set only for alpha-channel sources.
	Alpha ports.PixelBuffer

	// Number is the frame number derived from PresentationTime.
	Number int

	// PresentationTime is the media time of Color.
	PresentationTime time.Duration

	// refs counts holders of the buffers. The producing Output is one.
	refs atomic.Int32
}

// newFrame wraps a produced buffer, deriving its frame number.
func newFrame(buf ports.PixelBuffer, frameDuration time.Duration) *Frame {
	pts := buf.PresentationTime()
	f := &Frame{
		Color:            buf,
		Number:           FrameNumber(pts, frameDuration),
		PresentationTime: pts,
	}
	f.refs.Store(1)
	return f
}

// HasAlpha reports whether the frame carries an alpha matte.
func (f *Frame) HasAlpha() bool {
	return f.Alpha != nil
}

// retain adds a holder. The buffers outlive the producing Output's
// release until every holder has released the frame.
func (f *Frame) retain() {
	if f != nil {
		f.refs.Add(1)
	}
}

// release drops one holder and returns the buffers to their engine once
// none remain.
func (f *Frame) release() {
	if f == nil {
		return
	}
	if f.refs.Add(-1) > 0 {
		return
	}
	if f.Color != nil {
		f.Color.Release()
	}
	if f.Alpha != nil {
		f.Alpha.Release()
	}
}

func (f *Frame) String() string {
	if f == nil {
		return "frame<nil>"
	}
	return fmt.Sprintf("frame %d (pts %s, alpha %t)", f.Number, f.PresentationTime, f.HasAlpha())
}
