// Package summarizer provides summary generation for playback sessions.
package summarizer

import "time"

// Summary contains all data collected during a playback session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Session information
	Session SessionInfo

	// Playback results
	Playback PlaybackInfo

	// Playback settings
	Settings Settings

	// Per-stream counters
	Streams []StreamInfo
}

// SessionInfo describes what was played.
type SessionInfo struct {
	Clips     []string
	Instances int
	Engine    string
	Alpha     bool
}

// PlaybackInfo contains the session outcome.
type PlaybackInfo struct {
	StartHost   time.Duration // host time every instance started at
	StartSkew   time.Duration // spread of the instances' first frames
	Elapsed     time.Duration // host time from start to the end of the session
	Ticks       int
	FreshFrames int
	Snapshots   int
	LoopCount   int
	Transitions int
	LateStarts  int
	Finished    bool
	Interrupted bool
}

// Settings contains the playback configuration.
type Settings struct {
	Rate         float64
	LoopMaxCount int // negative = loop forever
	RefreshHz    int
	StartLead    time.Duration
	DesyncPulls  int
}

// StreamInfo contains the counters of one decoded stream or stream pair.
type StreamInfo struct {
	Name            string
	Produced        uint64
	Duplicates      uint64
	Stale           uint64
	Overwritten     uint64
	Selected        uint64
	NotYetAvailable uint64

	// Pairs only
	Paired         bool
	Agreed         uint64
	Mismatched     uint64
	DesyncEpisodes uint64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSession sets session information.
func (b *Builder) WithSession(session SessionInfo) *Builder {
	b.summary.Session = session
	return b
}

// WithPlayback sets the playback results.
func (b *Builder) WithPlayback(playback PlaybackInfo) *Builder {
	b.summary.Playback = playback
	return b
}

// WithSettings sets playback settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddStream appends stream counters.
func (b *Builder) AddStream(stream StreamInfo) *Builder {
	b.summary.Streams = append(b.summary.Streams, stream)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// DesyncEpisodes returns the desync episodes across all streams.
func (s *Summary) DesyncEpisodes() uint64 {
	var n uint64
	for _, st := range s.Streams {
		n += st.DesyncEpisodes
	}
	return n
}
