package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// LoopForever as loop max count repeats the sequence until Stop.
const LoopForever = -1

// PlaylistState is the state of a Playlist.
type PlaylistState int

const (
	PlaylistIdle PlaylistState = iota
	PlaylistPrerolling
	PlaylistPlaying
	PlaylistLastSecond
	// PlaylistTransitioning means the next entry missed its start window
	// and starts as soon as it is ready.
	PlaylistTransitioning
	PlaylistFinished
)

func (s PlaylistState) String() string {
	switch s {
	case PlaylistIdle:
		return "idle"
	case PlaylistPrerolling:
		return "prerolling"
	case PlaylistPlaying:
		return "playing"
	case PlaylistLastSecond:
		return "last-second"
	case PlaylistTransitioning:
		return "transitioning"
	case PlaylistFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PlaylistOption configures a Playlist.
type PlaylistOption func(*Playlist)

// WithLoopMaxCount sets how many extra passes follow the first one.
// Zero plays the entries once; LoopForever never stops on its own.
func WithLoopMaxCount(n int) PlaylistOption {
	return func(p *Playlist) {
		if n < 0 {
			n = LoopForever
		}
		p.loopMaxCount = n
	}
}

// WithRate sets the playback rate. Non-positive rates are ignored.
func WithRate(rate float64) PlaylistOption {
	return func(p *Playlist) {
		if rate > 0 {
			p.rate = rate
		}
	}
}

// WithStartLead sets how far ahead Play schedules the first frame.
func WithStartLead(d time.Duration) PlaylistOption {
	return func(p *Playlist) {
		p.startLead = d
	}
}

// RenderCommand is the result of one Tick: what to show and where the
// sequence stands.
type RenderCommand struct {
	// Frame to display, nil before the first frame is available.
	Frame *Frame

	// Fresh is set when Frame differs from the previous command's frame.
	Fresh bool

	// Index is the active entry.
	Index int

	LoopCount int
	Finished  bool

	// Err is the reason Frame is nil.
	Err error
}

// PlaylistStats summarizes a Playlist run.
type PlaylistStats struct {
	Transitions int
	LateStarts  int
	LoopCount   int
	Active      int
}

// Playlist sequences sources into one gapless, optionally looping stream.
// Like Output, it must be used from the presentation context.
type Playlist struct {
	entries []Source
	clock   ports.HostClock
	queue   *Queue
	logger  ports.Logger

	loopMaxCount int
	rate         float64
	startLead    time.Duration

	state      PlaylistState
	active     int
	loopCount  int
	preloading bool
	ended      bool

	held         *Frame
	lastRendered *Frame

	onLoaded     oneShot[func(bool)]
	onFinished   oneShot[func()]
	onLastSecond func(index int)
	onFinalFrame func(index int)
	onTransition func(from, to, loopCount int)

	transitions int
	lateStarts  int
}

var _ Participant = (*Playlist)(nil)

// NewPlaylist creates a Playlist over entries. Entries after the first are
// marked secondary.
func NewPlaylist(entries []Source, clock ports.HostClock, queue *Queue, logger ports.Logger, opts ...PlaylistOption) (*Playlist, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPlaylist
	}
	p := &Playlist{
		entries:   entries,
		clock:     clock,
		queue:     queue,
		logger:    logger.WithComponent("playlist"),
		rate:      1,
		startLead: DefaultStartLead,
	}
	for _, opt := range opts {
		opt(p)
	}
	for i, e := range entries {
		i := i
		e.SetSecondary(i > 0)
		e.SetCallbacks(Callbacks{
			LastSecond:      func() { p.entryLastSecond(i) },
			FinalFrameShown: func() { p.entryFinalFrame(i) },
			Finished:        func() { p.entryFinished(i) },
		})
	}
	return p, nil
}

// OnLoaded sets the one-shot callback for the first entry's load outcome.
func (p *Playlist) OnLoaded(fn func(ok bool)) {
	p.onLoaded.Set(fn)
}

// OnLastSecond sets the callback run when an entry enters its last second.
func (p *Playlist) OnLastSecond(fn func(index int)) {
	p.onLastSecond = fn
}

// OnFinalFrameShown sets the callback run when an entry shows its final frame.
func (p *Playlist) OnFinalFrameShown(fn func(index int)) {
	p.onFinalFrame = fn
}

// OnPlaybackFinished sets the callback run once the sequence has finished.
func (p *Playlist) OnPlaybackFinished(fn func()) {
	p.onFinished.Set(fn)
}

// OnTransition sets the callback run when the active entry changes or restarts.
func (p *Playlist) OnTransition(fn func(from, to, loopCount int)) {
	p.onTransition = fn
}

// Entries returns the sources in play order.
func (p *Playlist) Entries() []Source {
	return p.entries
}

func (p *Playlist) State() PlaylistState { return p.state }
func (p *Playlist) ActiveIndex() int { return p.active }
func (p *Playlist) LoopCount() int { return p.loopCount }
func (p *Playlist) LoopMaxCount() int { return p.loopMaxCount }
func (p *Playlist) Rate() float64 { return p.rate }
func (p *Playlist) HasMoreFrames() bool { return p.state != PlaylistFinished }
func (p *Playlist) IsFinishedPlaying() bool { return p.state == PlaylistFinished }

// Stats returns transition counters.
func (p *Playlist) Stats() PlaylistStats {
	return PlaylistStats{
		Transitions: p.transitions,
		LateStarts:  p.lateStarts,
		LoopCount:   p.loopCount,
		Active:      p.active,
	}
}

// Load loads every entry and starts prerolling the first.
func (p *Playlist) Load() {
	first := p.entries[0]
	first.OnLoaded(func(ok bool) {
		if !ok {
			p.logger.Error("First entry failed to load: %s", first.ID())
		}
		if fn, pending := p.onLoaded.Take(); pending {
			fn(ok)
		}
	})
	for _, e := range p.entries {
		e.Load()
	}
	first.PlayWithPreroll(p.rate, nil)
	p.preloading = true
}

// Play prerolls the active entry and starts it a short lead after it is ready.
func (p *Playlist) Play() error {
	switch p.state {
	case PlaylistFinished:
		return ErrPlaybackFinished
	case PlaylistIdle:
	default:
		return nil
	}
	NewSyncGroup(p.clock, p.startLead, p).Start(p.rate, func(at time.Duration, err error) {
		if err != nil {
			p.logger.Error("Failed to start playback: %v", err)
			return
		}
		p.logger.Info("Playback starts at host %s", at)
	})
	return nil
}

// PlayWithPreroll prerolls the active entry. It lets a Playlist join a
// SyncGroup with other playlists.
func (p *Playlist) PlayWithPreroll(rate float64, onReady func()) {
	if p.state == PlaylistFinished {
		return
	}
	if rate > 0 {
		p.rate = rate
	}
	p.state = PlaylistPrerolling
	active := p.entries[p.active]
	if p.preloading {
		p.preloading = false
		active.DeferStartUntilReady(onReady)
		return
	}
	active.PlayWithPreroll(p.rate, onReady)
}

// SyncStart starts the active entry at itemTime on atHostTime.
func (p *Playlist) SyncStart(rate float64, itemTime, atHostTime time.Duration) error {
	if p.state == PlaylistFinished {
		return ErrPlaybackFinished
	}
	if rate > 0 {
		p.rate = rate
	}
	if err := p.entries[p.active].SyncStart(p.rate, itemTime, atHostTime); err != nil {
		return err
	}
	p.state = PlaylistPlaying
	return nil
}

// Tick drains pending callbacks and resolves the frame for the given host
// times.
func (p *Playlist) Tick(hostTime, hostPresentationTime time.Duration) RenderCommand {
	p.queue.Drain()
	f, err := p.FrameForHostTime(hostTime, hostPresentationTime)
	cmd := RenderCommand{
		Frame:     f,
		Index:     p.active,
		LoopCount: p.loopCount,
		Finished:  p.state == PlaylistFinished,
		Err:       err,
	}
	if f != nil {
		cmd.Fresh = f != p.lastRendered
		p.lastRendered = f
	}
	return cmd
}

// FrameForHostTime returns the frame of the active entry, crossing into the
// next entry when the active one completes. While nothing new is available
// the last shown frame is held.
func (p *Playlist) FrameForHostTime(hostTime, hostPresentationTime time.Duration) (*Frame, error) {
	if p.state == PlaylistFinished {
		if p.held != nil {
			return p.held, nil
		}
		return nil, ErrPlaybackFinished
	}

	f, err := p.entries[p.active].FrameForHostTime(hostTime, hostPresentationTime)
	if p.ended {
		p.ended = false
		p.endOfLoop()
		if p.state != PlaylistFinished && p.state != PlaylistTransitioning {
			if nf, nerr := p.entries[p.active].FrameForHostTime(hostTime, hostPresentationTime); nerr == nil {
				f, err = nf, nil
			}
		}
	}

	if err == nil && f != nil {
		p.held = f
		return f, nil
	}
	if p.held != nil && IsTransient(err) {
		return p.held, nil
	}
	return nil, err
}

func (p *Playlist) entryLastSecond(i int) {
	if i != p.active || p.state == PlaylistFinished {
		return
	}
	p.state = PlaylistLastSecond
	if p.onLastSecond != nil {
		p.onLastSecond(i)
	}

	next := p.nextIndex()
	if next == i || p.finishesAtBoundary() {
		return
	}
	e := p.entries[next]
	p.logger.Debug("Prerolling entry %d", next)
	e.SeekToTimeZero()
	e.PlayWithPreroll(p.rate, nil)
}

func (p *Playlist) entryFinalFrame(i int) {
	if i == p.active && p.onFinalFrame != nil {
		p.onFinalFrame(i)
	}
}

func (p *Playlist) entryFinished(i int) {
	if i == p.active {
		p.ended = true
	}
}

func (p *Playlist) nextIndex() int {
	return (p.active + 1) % len(p.entries)
}

// finishesAtBoundary reports whether the end of the active entry ends the
// whole sequence.
func (p *Playlist) finishesAtBoundary() bool {
	if p.nextIndex() != 0 || p.loopMaxCount == LoopForever {
		return false
	}
	return p.loopCount+1 > p.loopMaxCount
}

// endOfLoop moves to the next entry, or restarts the only one, anchored one
// frame interval after the final frame of the completed entry began display.
func (p *Playlist) endOfLoop() {
	from := p.active
	cur := p.entries[from]

	boundary := p.clock.Now()
	if h, ok := cur.FinalFrameHostTime(); ok && p.rate > 0 {
		boundary = h + scale(cur.Timing().FrameDuration, 1/p.rate)
	}

	next := p.nextIndex()
	if next == 0 {
		p.loopCount++
		if p.loopMaxCount != LoopForever && p.loopCount > p.loopMaxCount {
			p.logger.Info("Sequence complete after %d passes", p.loopCount)
			cur.Stop()
			p.finish()
			return
		}
	}

	p.transitions++
	if next == from {
		cur.SeekToTimeZero()
		if err := cur.SyncStart(p.rate, 0, boundary); err != nil {
			p.logger.Error("Failed to restart entry %d: %v", from, err)
		}
		p.state = PlaylistPlaying
	} else {
		cur.Stop()
		p.active = next
		p.startEntry(next, boundary)
	}

	p.logger.Info("Transition %d -> %d at host %s (loop %d)", from, next, boundary, p.loopCount)
	if p.onTransition != nil {
		p.onTransition(from, next, p.loopCount)
	}
}

// startEntry starts entry i at boundary if it is prerolled. Otherwise the
// start is deferred until it is ready and anchored at that moment, so no
// frame before the late start is shown.
func (p *Playlist) startEntry(i int, boundary time.Duration) {
	e := p.entries[i]
	if e.IsPrerolled() {
		if err := e.SyncStart(p.rate, 0, boundary); err != nil {
			p.logger.Error("Failed to start entry %d: %v", i, err)
		}
		p.state = PlaylistPlaying
		return
	}

	p.lateStarts++
	p.state = PlaylistTransitioning
	p.logger.Warn("Entry %d not ready at its start time, starting when ready", i)
	e.DeferStartUntilReady(func() {
		if p.active != i || p.state != PlaylistTransitioning {
			return
		}
		if err := e.SyncStart(p.rate, 0, p.clock.Now()); err != nil {
			p.logger.Error("Failed to start entry %d: %v", i, err)
			return
		}
		p.state = PlaylistPlaying
	})
}

func (p *Playlist) finish() {
	if p.state == PlaylistFinished {
		return
	}
	p.state = PlaylistFinished
	p.logger.Info("Playback finished")
	if fn, ok := p.onFinished.Take(); ok {
		fn()
	}
}

// Stop stops every entry and finishes the sequence. Stopping twice has no
// further effect.
func (p *Playlist) Stop() {
	if p.state == PlaylistFinished {
		return
	}
	for _, e := range p.entries {
		e.Stop()
	}
	p.finish()
}

// Close stops playback and closes every entry.
func (p *Playlist) Close() error {
	p.Stop()
	var errs []error
	for _, e := range p.entries {
		if err := e.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", e.ID(), err))
		}
	}
	p.held = nil
	p.lastRendered = nil
	return errors.Join(errs...)
}

func (p *Playlist) String() string {
	return fmt.Sprintf("playlist (%s, entry %d/%d, loop %d/%d)",
		p.state, p.active+1, len(p.entries), p.loopCount, p.loopMaxCount)
}
