package orchestrator

import (
	"time"

	"github.com/user/alphaplay/pkg/playback"
)

// RunResult contains the results of a session for summary generation.
type RunResult struct {
	Instances int

	// Timing information
	Started   bool
	StartHost time.Duration // host time every instance was anchored to
	Elapsed   time.Duration // host time from start to the last tick
	StartSkew time.Duration // spread of the instances' first frame host times

	// Presentation
	Ticks            int
	FreshFrames      int
	Snapshots        int
	SkippedSnapshots int // snapshots due on frames without pixels

	// Sequencing (LoopCount is the first instance's)
	LoopCount   int
	Transitions int
	LateStarts  int

	Finished    bool
	Interrupted bool

	Streams  []StreamStats
	Timeline []TimelineEntry
}

// StreamStats holds the counters of one playlist entry.
type StreamStats struct {
	Instance int
	Name     string
	Output   playback.OutputStats
	Alpha    *playback.AlphaStats // set for color+alpha entries
}

// TimelineEntry records one newly displayed frame.
type TimelineEntry struct {
	Instance       int     `json:"instance"`
	HostMs         float64 `json:"host_ms"`
	PresentationMs float64 `json:"presentation_ms"`
	Entry          int     `json:"entry"`
	Loop           int     `json:"loop"`
	Frame          int     `json:"frame"`
	ItemMs         float64 `json:"item_ms"`
	Alpha          bool    `json:"alpha,omitempty"`
}
