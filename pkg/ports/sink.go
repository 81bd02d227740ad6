package ports

import (
	"image"
)

// FrameSink abstracts debug output of a playback session.
// It allows saving frame snapshots and timelines for inspection.
type FrameSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFrame saves a composed snapshot of a presented frame.
	SaveFrame(index int, img image.Image) error

	// SaveTimelineJSON saves the per-tick presentation timeline.
	SaveTimelineJSON(data []byte) error

	// SaveSummary saves the formatted session summary.
	SaveSummary(data []byte) error
}
