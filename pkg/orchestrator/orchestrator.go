// Package orchestrator runs playback sessions: it builds playlists, starts
// every instance on one host tick and drives them from a refresh driver.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/alphaplay/pkg/playback"
	"github.com/user/alphaplay/pkg/player"
	"github.com/user/alphaplay/pkg/ports"
)

// ErrStartTimeout is returned when playback has not started within Config.StartTimeout.
var ErrStartTimeout = errors.New("orchestrator: playback did not start in time")

// snapshotBuffer is how many snapshots may wait for the writer.
const snapshotBuffer = 8

// Config contains all configuration for a playback session.
type Config struct {
	// Input
	Clips []player.Clip
	Loop  bool

	// Independent player instances started in sync on the same clips.
	Instances int

	Player player.Config

	// MaxDuration stops the session after this much host time. Zero plays to the end.
	MaxDuration time.Duration

	// StartTimeout bounds the wait for every instance to become ready.
	StartTimeout time.Duration

	// Snapshots
	SnapshotEvery int // save every Nth new frame of the first instance (0 = off)
	SnapshotWidth int // resize snapshots to this width (0 = native)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Instances:    1,
		Player:       player.DefaultConfig(),
		StartTimeout: 10 * time.Second,
	}
}

// Orchestrator coordinates a playback session.
type Orchestrator struct {
	factory  player.EngineFactory
	clock    ports.HostClock
	driver   ports.RefreshDriver
	renderer ports.Renderer
	sink     ports.FrameSink
	logger   ports.Logger
}

// New creates a new Orchestrator.
func New(
	factory player.EngineFactory,
	clock ports.HostClock,
	driver ports.RefreshDriver,
	renderer ports.Renderer,
	sink ports.FrameSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		factory:  factory,
		clock:    clock,
		driver:   driver,
		renderer: renderer,
		sink:     sink,
		logger:   logger,
	}
}

// Run plays the session until every instance finishes, MaxDuration
// elapses, the driver stops or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	if config.Instances < 1 {
		config.Instances = 1
	}
	o.logger.Info("Starting session: %d clips, %d instances", len(config.Clips), config.Instances)

	p := player.New(o.factory, o.clock, o.logger, config.Player)
	s := &session{
		o:      o,
		config: config,
		queue:  p.Queue(),
	}
	defer s.close()

	for i := 0; i < config.Instances; i++ {
		var list *playback.Playlist
		var err error
		if config.Loop {
			list, err = p.WithLoopedClips(config.Clips)
		} else {
			list, err = p.WithClips(config.Clips)
		}
		if err != nil {
			o.logger.Error("Failed to build playlist: %v", err)
			return RunResult{}, fmt.Errorf("build playlist: %w", err)
		}
		s.add(list)
	}

	s.start()

	g, gctx := errgroup.WithContext(ctx)
	snaps := make(chan snapshot, snapshotBuffer)
	g.Go(func() error {
		defer close(snaps)
		return s.present(gctx, snaps)
	})
	g.Go(func() error {
		return s.writeSnapshots(snaps)
	})
	err := g.Wait()

	result := s.result()
	result.Interrupted = ctx.Err() != nil
	if err != nil {
		o.logger.Error("Session failed: %v", err)
		return result, err
	}

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(result.Timeline, "", "  "); err == nil {
			if err := o.sink.SaveTimelineJSON(data); err != nil {
				o.logger.Warn("Failed to save timeline: %v", err)
			}
		}
	}

	o.logger.Info("Session complete: %d frames shown over %s", result.FreshFrames, result.Elapsed)
	return result, nil
}

// snapshot is a frame handed from the presentation loop to the writer.
type snapshot struct {
	index int
	label string
	color image.Image
	alpha image.Image
}

func (s *session) writeSnapshots(snaps <-chan snapshot) error {
	o := s.o
	for snap := range snaps {
		img := snap.color
		if snap.alpha != nil {
			img = o.renderer.Compose(img, snap.alpha)
		}
		if w := s.config.SnapshotWidth; w > 0 && img.Bounds().Dx() != w {
			b := img.Bounds()
			h := max(1, b.Dy()*w/b.Dx())
			img = o.renderer.ResizeImage(img, w, h)
		}
		img = o.renderer.Annotate(img, snap.label)
		if err := o.sink.SaveFrame(snap.index, img); err != nil {
			return fmt.Errorf("save snapshot %d: %w", snap.index, err)
		}
		s.snapshots.Add(1)
	}
	return nil
}
