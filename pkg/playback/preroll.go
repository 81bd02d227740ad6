package playback

import (
	"errors"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// DefaultStartLead is how far in the future a SyncGroup schedules the
// common start time once every participant is ready.
const DefaultStartLead = 50 * time.Millisecond

// Participant is anything that can take part in a synchronized start.
// Source and Playlist both satisfy it.
type Participant interface {
	PlayWithPreroll(rate float64, onReady func())
	SyncStart(rate float64, itemTime, atHostTime time.Duration) error
}

// SyncGroup starts several participants on the same host-clock tick.
// Each prerolls independently; once all are ready the group picks one start
// time and anchors every participant to it. After that the participants
// stay in step without further coordination, since their mappers are pure
// functions of identical anchors.
//
// Start's callbacks arrive through the participants' queues, so Start and
// the completion callback run on the presentation context.
type SyncGroup struct {
	clock        ports.HostClock
	lead         time.Duration
	participants []Participant
}

// NewSyncGroup creates a group that starts participants lead after the last
// of them becomes ready.
func NewSyncGroup(clock ports.HostClock, lead time.Duration, participants ...Participant) *SyncGroup {
	if lead < 0 {
		lead = 0
	}
	return &SyncGroup{
		clock:        clock,
		lead:         lead,
		participants: participants,
	}
}

// Start prerolls every participant at rate and sync-starts them together.
// onStarted, if set, receives the chosen host time and any SyncStart errors.
func (g *SyncGroup) Start(rate float64, onStarted func(at time.Duration, err error)) {
	if len(g.participants) == 0 {
		if onStarted != nil {
			onStarted(g.clock.Now(), nil)
		}
		return
	}

	ready := make([]bool, len(g.participants))
	pending := len(g.participants)
	for i, p := range g.participants {
		i := i
		p.PlayWithPreroll(rate, func() {
			if ready[i] {
				return
			}
			ready[i] = true
			pending--
			if pending == 0 {
				g.startAll(rate, onStarted)
			}
		})
	}
}

func (g *SyncGroup) startAll(rate float64, onStarted func(time.Duration, error)) {
	at := g.clock.Now() + g.lead
	var errs []error
	for _, p := range g.participants {
		if err := p.SyncStart(rate, 0, at); err != nil {
			errs = append(errs, err)
		}
	}
	if onStarted != nil {
		onStarted(at, errors.Join(errs...))
	}
}
