package playback

import "time"

// StreamState is the lifecycle state of a stream.
type StreamState int

const (
	StateUnloaded StreamState = iota
	StateLoading
	StateReadyToPlay
	StatePlaying
	StateLastSecond
	StateFinished
)

func (s StreamState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReadyToPlay:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateLastSecond:
		return "last-second"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// DefaultLastSecondDelta is how long before the final frame the
// last-second callback fires.
const DefaultLastSecondDelta = time.Second

// ClipTiming is the timing of a loaded clip.
type ClipTiming struct {
	Duration      time.Duration
	FrameDuration time.Duration
	Width         int
	Height        int

	// FrameCount is the number of frames; the last is FrameCount-1.
	FrameCount int

	// FinalFrameTime is the item time the final frame starts at.
	FinalFrameTime time.Duration

	// LastSecondFrameTime is FinalFrameTime minus the last-second delta, at least 0.
	LastSecondFrameTime time.Duration
}

// FPS returns the nominal frame rate.
func (t ClipTiming) FPS() float64 {
	if t.FrameDuration <= 0 {
		return 0
	}
	return float64(time.Second) / float64(t.FrameDuration)
}

// LastFrame returns the number of the final frame.
func (t ClipTiming) LastFrame() int {
	if t.FrameCount == 0 {
		return 0
	}
	return t.FrameCount - 1
}

func newClipTiming(duration, frameDuration time.Duration, width, height int, lastSecondDelta time.Duration) ClipTiming {
	t := ClipTiming{
		Duration:      duration,
		FrameDuration: frameDuration,
		Width:         width,
		Height:        height,
	}
	t.FrameCount = FrameNumber(duration, frameDuration)
	if t.FrameCount < 1 {
		t.FrameCount = 1
	}
	t.FinalFrameTime = FrameTime(t.FrameCount-1, frameDuration)
	t.LastSecondFrameTime = t.FinalFrameTime - lastSecondDelta
	if t.LastSecondFrameTime < 0 {
		t.LastSecondFrameTime = 0
	}
	return t
}

// Callbacks are edge-triggered lifecycle notifications. Each fires at most
// once per pass through a clip and is re-armed when the clip restarts.
// They run on the presentation context.
type Callbacks struct {
	LastSecond      func()
	FinalFrameShown func()
	Finished        func()
}

// Source produces Frames for host times. Output (color only) and AlphaPair
// (color plus alpha) both implement it, so callers never inspect which one
// they hold.
type Source interface {
	// ID identifies the source in logs.
	ID() string

	// Load starts loading the asset. OnLoaded fires once with the outcome.
	Load()
	OnLoaded(fn func(ok bool))

	// SetSecondary marks a source that is not the first entry of a loop,
	// which suppresses its one-shot load callback.
	SetSecondary(secondary bool)

	SetCallbacks(cb Callbacks)
	Timing() ClipTiming
	State() StreamState
	IsReadyToPlay() bool
	IsPrerolled() bool
	IsPlaying() bool
	IsFinishedPlaying() bool
	HasMoreFrames() bool

	// PlayWithPreroll buffers ahead at rate without advancing the visible
	// clock and calls onReady once a glitch-free start is possible.
	PlayWithPreroll(rate float64, onReady func())

	// DeferStartUntilReady replaces the pending preroll callback with fn.
	// It is used when the source missed its start window: fn runs when the
	// source becomes ready, or immediately if it already is.
	DeferStartUntilReady(fn func())

	SyncStart(rate float64, itemTime, atHostTime time.Duration) error
	SetRate(rate float64, atHostTime time.Duration)
	Play() error
	Stop()
	SeekToTimeZero()
	Restart() error

	// FrameForHostTime returns the frame to display at hostPresentationTime.
	// hostTime is when the request was made; when hostPresentationTime is
	// zero, hostTime is used for both.
	FrameForHostTime(hostTime, hostPresentationTime time.Duration) (*Frame, error)

	// FinalFrameHostTime returns the host time the final frame began display.
	FinalFrameHostTime() (time.Duration, bool)

	Close() error
}
