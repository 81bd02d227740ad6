package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/user/alphaplay/pkg/playback"
	"github.com/user/alphaplay/pkg/ports"
)

// session is the state of one Run. Everything except snapshots is touched
// only from the presentation goroutine.
type session struct {
	o      *Orchestrator
	config Config
	queue  *playback.Queue
	lists  []*playback.Playlist

	started  bool
	startAt  time.Duration
	startErr error
	loadErr  error
	firstAt  time.Duration
	lastHost time.Duration

	firstFrame []time.Duration
	ticks      int
	fresh      int
	shown      int
	skipped    int
	timeline   []TimelineEntry

	snapshots atomic.Int64
}

func (s *session) add(list *playback.Playlist) {
	i := len(s.lists)
	s.lists = append(s.lists, list)
	s.firstFrame = append(s.firstFrame, -1)

	list.OnLoaded(func(ok bool) {
		if !ok && s.loadErr == nil {
			s.loadErr = fmt.Errorf("instance %d: %w", i, playback.ErrLoadFailure)
		}
	})
	list.OnTransition(func(from, to, loopCount int) {
		s.o.logger.Debug("Instance %d: entry %d -> %d (loop %d)", i, from, to, loopCount)
	})
	list.OnPlaybackFinished(func() {
		s.o.logger.Info("Instance %d finished after %d loops", i, list.LoopCount())
	})
}

// start loads every playlist and asks them to start together once all are
// prerolled. The start completes on a later tick.
func (s *session) start() {
	participants := make([]playback.Participant, len(s.lists))
	for i, list := range s.lists {
		list.Load()
		participants[i] = list
	}
	group := playback.NewSyncGroup(s.o.clock, s.config.Player.StartLead, participants...)
	group.Start(s.config.Player.Rate, func(at time.Duration, err error) {
		s.started = true
		s.startAt = at
		s.startErr = err
		s.o.logger.Info("All instances start at host %s", at)
	})
}

func (s *session) present(ctx context.Context, snaps chan<- snapshot) error {
	first := true
	for tick := range s.o.driver.Ticks(ctx) {
		if first {
			s.firstAt = tick.HostTime
			first = false
		}
		s.lastHost = tick.HostTime
		s.ticks++

		for i, list := range s.lists {
			cmd := list.Tick(tick.HostTime, tick.PresentationTime)
			if err := s.handle(ctx, i, tick, cmd, snaps); err != nil {
				return err
			}
		}
		// Callbacks posted during this tick's pulls
		s.queue.Drain()

		if s.loadErr != nil {
			return s.loadErr
		}
		if s.startErr != nil {
			return fmt.Errorf("start playback: %w", s.startErr)
		}
		if !s.started {
			if s.config.StartTimeout > 0 && tick.HostTime-s.firstAt >= s.config.StartTimeout {
				return ErrStartTimeout
			}
			continue
		}
		if s.allFinished() {
			return nil
		}
		if s.config.MaxDuration > 0 && tick.HostTime-s.startAt >= s.config.MaxDuration {
			s.o.logger.Info("Session limit of %s reached", s.config.MaxDuration)
			return nil
		}
	}
	return nil
}

func (s *session) handle(ctx context.Context, i int, tick ports.Tick, cmd playback.RenderCommand, snaps chan<- snapshot) error {
	if cmd.Err != nil && !playback.IsTransient(cmd.Err) && !errors.Is(cmd.Err, playback.ErrPlaybackFinished) {
		s.o.logger.Debug("Instance %d: %v", i, cmd.Err)
	}
	if !cmd.Fresh || cmd.Frame == nil {
		return nil
	}

	s.fresh++
	if s.firstFrame[i] < 0 {
		s.firstFrame[i] = tick.HostTime
	}
	s.timeline = append(s.timeline, TimelineEntry{
		Instance:       i,
		HostMs:         durationMs(tick.HostTime),
		PresentationMs: durationMs(tick.PresentationTime),
		Entry:          cmd.Index,
		Loop:           cmd.LoopCount,
		Frame:          cmd.Frame.Number,
		ItemMs:         durationMs(cmd.Frame.PresentationTime),
		Alpha:          cmd.Frame.HasAlpha(),
	})

	if i != 0 || s.config.SnapshotEvery <= 0 || !s.o.sink.Enabled() {
		return nil
	}
	s.shown++
	if (s.shown-1)%s.config.SnapshotEvery != 0 {
		return nil
	}

	color := imageOf(cmd.Frame.Color)
	if color == nil {
		s.skipped++
		return nil
	}
	snap := snapshot{
		index: s.shown,
		label: fmt.Sprintf("entry %d  loop %d  frame %d", cmd.Index, cmd.LoopCount, cmd.Frame.Number),
		color: color,
		alpha: imageOf(cmd.Frame.Alpha),
	}
	select {
	case snaps <- snap:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// imageOf returns the pixels of buf, or nil for buffers without an image.
func imageOf(buf ports.PixelBuffer) image.Image {
	if ib, ok := buf.(ports.ImageBuffer); ok {
		return ib.Image()
	}
	return nil
}

func (s *session) allFinished() bool {
	for _, list := range s.lists {
		if !list.IsFinishedPlaying() {
			return false
		}
	}
	return true
}

func (s *session) result() RunResult {
	r := RunResult{
		Instances:        len(s.lists),
		Started:          s.started,
		StartHost:        s.startAt,
		Ticks:            s.ticks,
		FreshFrames:      s.fresh,
		Snapshots:        int(s.snapshots.Load()),
		SkippedSnapshots: s.skipped,
		Finished:         s.started && s.allFinished(),
		Timeline:         s.timeline,
	}
	if s.started && s.lastHost > s.startAt {
		r.Elapsed = s.lastHost - s.startAt
	}

	lo, hi := time.Duration(-1), time.Duration(-1)
	for _, at := range s.firstFrame {
		if at < 0 {
			continue
		}
		if lo < 0 || at < lo {
			lo = at
		}
		hi = max(hi, at)
	}
	if lo >= 0 {
		r.StartSkew = hi - lo
	}

	for i, list := range s.lists {
		st := list.Stats()
		r.Transitions += st.Transitions
		r.LateStarts += st.LateStarts
		if i == 0 {
			r.LoopCount = st.LoopCount
		}
		for _, e := range list.Entries() {
			r.Streams = append(r.Streams, streamStats(i, e))
		}
	}
	return r
}

func streamStats(instance int, src playback.Source) StreamStats {
	st := StreamStats{Instance: instance, Name: src.ID()}
	switch e := src.(type) {
	case *playback.AlphaPair:
		a := e.Stats()
		st.Output = a.Color
		st.Alpha = &a
	case *playback.Output:
		st.Output = e.Stats()
	}
	return st
}

// close stops and releases every playlist.
func (s *session) close() {
	for i, list := range s.lists {
		list.Stop()
		if err := list.Close(); err != nil {
			s.o.logger.Warn("Failed to close instance %d: %v", i, err)
		}
	}
	s.queue.Drain()
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
