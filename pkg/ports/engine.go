// Package ports defines interfaces for the collaborators of the playback core:
// decode engines, the host clock, display refresh and debug output.
package ports

import (
	"image"
	"time"
)

// PixelBuffer is one decoded (or ready-to-decode) picture handed out by a DecodeEngine.
// The receiver owns the buffer until it calls Release.
type PixelBuffer interface {
	// PresentationTime returns the media time this buffer is displayed at.
	PresentationTime() time.Duration

	// Release returns the buffer to the engine. Calling Release twice is a no-op.
	Release()
}

// ImageBuffer is a PixelBuffer whose pixels are available as an image.
type ImageBuffer interface {
	PixelBuffer

	// Image returns the decoded pixels.
	Image() image.Image
}

// DecodeEngine abstracts the asynchronous decoder behind exactly one stream.
//
// Callbacks passed to RequestReady and Preroll may be invoked from any goroutine.
// All other methods must be safe to call concurrently with ProduceBuffer.
type DecodeEngine interface {
	// RequestReady starts loading asset metadata and reports success once.
	RequestReady(onReady func(success bool))

	// Preroll asks the engine to buffer ahead for playback at rate and
	// reports when enough is buffered for a glitch-free start.
	Preroll(rate float64, done func(finished bool))

	// Seek moves the decode position to itemTime.
	Seek(itemTime time.Duration)

	// SetRate sets the decode rate. Zero pauses decoding.
	SetRate(rate float64)

	// ProduceBuffer returns the buffer nearest targetItemTime.
	// The second result is false while the buffer is still pending.
	ProduceBuffer(targetItemTime time.Duration) (PixelBuffer, bool)

	// Duration returns the clip duration. Valid after a successful RequestReady.
	Duration() time.Duration

	// FrameDuration returns the nominal duration of one frame.
	FrameDuration() time.Duration

	// Dimensions returns the pixel size of the stream.
	Dimensions() (width, height int)

	// Close releases engine resources.
	Close() error
}
