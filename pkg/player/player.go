package player

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/user/alphaplay/pkg/playback"
	"github.com/user/alphaplay/pkg/ports"
)

var (
	// ErrNoClips is returned when a playlist is requested without clips.
	ErrNoClips = errors.New("player: no clips")

	// ErrMixedAlpha is returned when some clips carry alpha and others do not.
	ErrMixedAlpha = errors.New("player: clips mix alpha and color-only assets")
)

// Clip names the assets of one playlist entry.
type Clip struct {
	Color string
	Alpha string // optional matte asset
}

// HasAlpha reports whether the clip carries an alpha asset.
func (c Clip) HasAlpha() bool {
	return c.Alpha != ""
}

// Name returns a short display name for the clip.
func (c Clip) Name() string {
	return filepath.Base(c.Color)
}

// HasAlphaChannel reports whether the clips carry alpha.
// All clips must agree.
func HasAlphaChannel(clips []Clip) (bool, error) {
	if len(clips) == 0 {
		return false, ErrNoClips
	}
	alpha := clips[0].HasAlpha()
	for _, c := range clips[1:] {
		if c.HasAlpha() != alpha {
			return false, ErrMixedAlpha
		}
	}
	return alpha, nil
}

// EngineFactory opens a decode engine for an asset.
type EngineFactory func(asset string) (ports.DecodeEngine, error)

// Player builds playlists whose entries share one clock, one presentation
// queue and one set of playback settings.
type Player struct {
	factory EngineFactory
	clock   ports.HostClock
	queue   *playback.Queue
	logger  ports.Logger
	config  Config
}

// New creates a new Player.
func New(factory EngineFactory, clock ports.HostClock, logger ports.Logger, config Config) *Player {
	return &Player{
		factory: factory,
		clock:   clock,
		queue:   playback.NewQueue(),
		logger:  logger,
		config:  config,
	}
}

// Queue returns the presentation queue every playlist of this player drains.
func (p *Player) Queue() *playback.Queue {
	return p.queue
}

// Clock returns the host clock.
func (p *Player) Clock() ports.HostClock {
	return p.clock
}

// WithClip plays one clip once.
func (p *Player) WithClip(clip Clip) (*playback.Playlist, error) {
	return p.playlist([]Clip{clip}, 0)
}

// WithClips plays the clips in order, once.
func (p *Player) WithClips(clips []Clip) (*playback.Playlist, error) {
	return p.playlist(clips, 0)
}

// WithLoopedClip loops one clip Config.LoopMaxCount extra times.
func (p *Player) WithLoopedClip(clip Clip) (*playback.Playlist, error) {
	return p.playlist([]Clip{clip}, p.config.LoopMaxCount)
}

// WithLoopedClips loops the clips in order Config.LoopMaxCount extra times.
func (p *Player) WithLoopedClips(clips []Clip) (*playback.Playlist, error) {
	return p.playlist(clips, p.config.LoopMaxCount)
}

func (p *Player) playlist(clips []Clip, loopMaxCount int) (*playback.Playlist, error) {
	if _, err := HasAlphaChannel(clips); err != nil {
		return nil, err
	}

	entries := make([]playback.Source, 0, len(clips))
	closeAll := func() {
		for _, e := range entries {
			e.Close()
		}
	}
	for i, clip := range clips {
		src, err := p.source(clip)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("clip %d (%s): %w", i, clip.Name(), err)
		}
		entries = append(entries, src)
	}

	list, err := playback.NewPlaylist(entries, p.clock, p.queue, p.logger,
		playback.WithLoopMaxCount(loopMaxCount),
		playback.WithRate(p.config.Rate),
		playback.WithStartLead(p.config.StartLead),
	)
	if err != nil {
		closeAll()
		return nil, err
	}
	return list, nil
}

func (p *Player) source(clip Clip) (playback.Source, error) {
	color, err := p.output(clip.Color)
	if err != nil {
		return nil, err
	}
	if !clip.HasAlpha() {
		return color, nil
	}

	alpha, err := p.output(clip.Alpha)
	if err != nil {
		color.Close()
		return nil, err
	}
	return playback.NewAlphaPair(color, alpha, p.logger,
		playback.WithDesyncPulls(p.config.DesyncPulls),
	), nil
}

func (p *Player) output(asset string) (*playback.Output, error) {
	engine, err := p.factory(asset)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", asset, err)
	}
	opts := []playback.OutputOption{playback.WithLastSecondDelta(p.config.LastSecondDelta)}
	if p.config.InlineProduce {
		opts = append(opts, playback.WithInlineProduce())
	}
	return playback.NewOutput(engine, p.clock, p.queue, p.logger, opts...), nil
}
