package playback

import "errors"

var (
	// ErrUnresolvable means no item time can be derived yet: no anchor has
	// been established, or the host time precedes the anchor.
	ErrUnresolvable = errors.New("host time not mappable to item time")

	// ErrFrameNotYetAvailable means the stream has not produced the frame
	// for the requested time yet. A later tick will succeed.
	ErrFrameNotYetAvailable = errors.New("frame not yet available")

	// ErrLoadFailure means the asset never became ready to play.
	ErrLoadFailure = errors.New("asset failed to load")

	// ErrNotReadyToPlay is returned by commands that need loaded clip timing.
	ErrNotReadyToPlay = errors.New("stream not ready to play")

	// ErrPlaybackFinished is returned once a playlist has stopped.
	ErrPlaybackFinished = errors.New("playback finished")

	// ErrEmptyPlaylist is returned when a playlist is built without entries.
	ErrEmptyPlaylist = errors.New("playlist has no entries")
)

// IsTransient reports whether err only means "try again on a later tick".
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnresolvable) || errors.Is(err, ErrFrameNotYetAvailable)
}
