package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// DefaultDesyncPulls is how many consecutive pulls without agreeing color
// and alpha frames raise a desync warning.
const DefaultDesyncPulls = 3

// AlphaOption configures an AlphaPair.
type AlphaOption func(*AlphaPair)

// WithDesyncPulls sets the desync warning threshold.
func WithDesyncPulls(n int) AlphaOption {
	return func(p *AlphaPair) {
		if n > 0 {
			p.desyncPulls = n
		}
	}
}

// OnDesync sets a callback run once per desync episode with the last seen
// color and alpha frame numbers (-1 when a side had no frame).
func OnDesync(fn func(colorFrame, alphaFrame int)) AlphaOption {
	return func(p *AlphaPair) {
		p.onDesync = fn
	}
}

// AlphaStats counts agreement between the two streams of an AlphaPair.
type AlphaStats struct {
	Color          OutputStats
	Alpha          OutputStats
	Agreed         uint64
	Mismatched     uint64
	DesyncEpisodes uint64
}

// AlphaPair plays a color stream and an alpha-matte stream in lock-step and
// only hands out frames whose numbers agree. It is a Source like a single
// Output. Readiness requires both streams; finishing takes either.
type AlphaPair struct {
	uid    string
	color  *Output
	alpha  *Output
	clock  ports.HostClock
	logger ports.Logger

	desyncPulls int
	onDesync    func(colorFrame, alphaFrame int)

	secondary bool
	loaded    oneShot[func(bool)]
	loadAcks  int
	loadFail  bool

	callbacks     Callbacks
	finishedFired bool

	generation       int
	prerolling       bool
	prerollReady     oneShot[func()]
	asyncReadyToPlay oneShot[func()]

	held                 *Frame
	heldColor, heldAlpha *Frame
	misses               int
	desynced             bool

	agreed, mismatched, episodes uint64
}

var _ Source = (*AlphaPair)(nil)

// NewAlphaPair pairs color and alpha. Both outputs must share clock and queue.
func NewAlphaPair(color, alpha *Output, logger ports.Logger, opts ...AlphaOption) *AlphaPair {
	p := &AlphaPair{
		uid:         color.ID(),
		color:       color,
		alpha:       alpha,
		clock:       color.clock,
		desyncPulls: DefaultDesyncPulls,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.WithComponent("alpha:" + p.uid)

	color.SetCallbacks(Callbacks{
		LastSecond:      p.colorLastSecond,
		FinalFrameShown: p.colorFinalFrame,
		Finished:        p.streamFinished,
	})
	alpha.SetCallbacks(Callbacks{
		Finished: p.streamFinished,
	})
	return p
}

// ID returns the color stream uid.
func (p *AlphaPair) ID() string {
	return p.uid
}

// Color returns the color stream.
func (p *AlphaPair) Color() *Output {
	return p.color
}

// Alpha returns the alpha stream.
func (p *AlphaPair) Alpha() *Output {
	return p.alpha
}

// OnLoaded sets the one-shot load callback. It fires once both streams
// loaded, or as soon as either fails.
func (p *AlphaPair) OnLoaded(fn func(ok bool)) {
	p.loaded.Set(fn)
}

// SetSecondary marks the pair as a later loop entry.
func (p *AlphaPair) SetSecondary(secondary bool) {
	p.secondary = secondary
}

// SetCallbacks replaces the lifecycle callbacks. LastSecond and
// FinalFrameShown follow the color stream only.
func (p *AlphaPair) SetCallbacks(cb Callbacks) {
	p.callbacks = cb
}

func (p *AlphaPair) colorLastSecond() {
	if p.callbacks.LastSecond != nil {
		p.callbacks.LastSecond()
	}
}

func (p *AlphaPair) colorFinalFrame() {
	if p.callbacks.FinalFrameShown != nil {
		p.callbacks.FinalFrameShown()
	}
}

func (p *AlphaPair) streamFinished() {
	if p.finishedFired {
		return
	}
	p.finishedFired = true
	if p.callbacks.Finished != nil {
		p.callbacks.Finished()
	}
}

// Timing returns the color stream timing.
func (p *AlphaPair) Timing() ClipTiming {
	return p.color.Timing()
}

// State returns the less advanced state of the two streams, or Finished once
// either has finished.
func (p *AlphaPair) State() StreamState {
	c, a := p.color.State(), p.alpha.State()
	if c == StateFinished || a == StateFinished {
		return StateFinished
	}
	if a < c {
		return a
	}
	return c
}

func (p *AlphaPair) IsReadyToPlay() bool {
	return p.color.IsReadyToPlay() && p.alpha.IsReadyToPlay()
}

func (p *AlphaPair) IsPrerolled() bool {
	return p.color.IsPrerolled() && p.alpha.IsPrerolled()
}

func (p *AlphaPair) IsPlaying() bool {
	return p.color.IsPlaying() && p.alpha.IsPlaying()
}

func (p *AlphaPair) IsFinishedPlaying() bool {
	return p.color.IsFinishedPlaying() || p.alpha.IsFinishedPlaying()
}

func (p *AlphaPair) HasMoreFrames() bool {
	return p.color.HasMoreFrames() && p.alpha.HasMoreFrames()
}

// Load starts loading both streams.
func (p *AlphaPair) Load() {
	p.color.OnLoaded(p.streamLoaded)
	p.alpha.OnLoaded(p.streamLoaded)
	p.color.Load()
	p.alpha.Load()
}

func (p *AlphaPair) streamLoaded(ok bool) {
	p.loadAcks++
	if !ok && !p.loadFail {
		p.loadFail = true
		p.fireLoaded(false)
		return
	}
	if p.loadAcks == 2 && !p.loadFail {
		ct, at := p.color.Timing(), p.alpha.Timing()
		if ct.FrameDuration != at.FrameDuration || ct.FrameCount != at.FrameCount {
			p.logger.Warn("Color and alpha timing differ: %d frames at %s vs %d frames at %s",
				ct.FrameCount, ct.FrameDuration, at.FrameCount, at.FrameDuration)
		}
		p.fireLoaded(true)
	}
}

func (p *AlphaPair) fireLoaded(ok bool) {
	fn, pending := p.loaded.Take()
	if !pending || p.secondary {
		return
	}
	fn(ok)
}

// PlayWithPreroll prerolls both streams. onReady runs once both are ready.
func (p *AlphaPair) PlayWithPreroll(rate float64, onReady func()) {
	p.generation++
	gen := p.generation
	p.prerolling = true
	p.prerollReady.Set(onReady)

	pending := 2
	done := func() {
		if gen != p.generation {
			return
		}
		pending--
		if pending > 0 {
			return
		}
		p.prerolling = false
		if fn, ok := p.asyncReadyToPlay.Take(); ok {
			p.prerollReady.Take()
			fn()
			return
		}
		if fn, ok := p.prerollReady.Take(); ok {
			fn()
		}
	}
	p.color.PlayWithPreroll(rate, done)
	p.alpha.PlayWithPreroll(rate, done)
}

// DeferStartUntilReady runs fn once both streams are prerolled.
func (p *AlphaPair) DeferStartUntilReady(fn func()) {
	if fn == nil {
		return
	}
	if p.IsPrerolled() {
		fn()
		return
	}
	p.asyncReadyToPlay.Set(fn)
	if !p.prerolling {
		p.PlayWithPreroll(p.color.playRate, nil)
	}
}

// SyncStart starts both streams with the same anchor.
func (p *AlphaPair) SyncStart(rate float64, itemTime, atHostTime time.Duration) error {
	p.cancelPreroll()
	// Neither stream is anchored unless both can start.
	if !p.color.IsReadyToPlay() {
		return fmt.Errorf("color: %w", ErrNotReadyToPlay)
	}
	if !p.alpha.IsReadyToPlay() {
		return fmt.Errorf("alpha: %w", ErrNotReadyToPlay)
	}
	if err := p.color.SyncStart(rate, itemTime, atHostTime); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if err := p.alpha.SyncStart(rate, itemTime, atHostTime); err != nil {
		p.color.Stop()
		return fmt.Errorf("alpha: %w", err)
	}
	p.rearm()
	return nil
}

func (p *AlphaPair) SetRate(rate float64, atHostTime time.Duration) {
	p.color.SetRate(rate, atHostTime)
	p.alpha.SetRate(rate, atHostTime)
}

// Play starts both streams from their seek position at one host instant.
func (p *AlphaPair) Play() error {
	now := p.clock.Now()
	p.cancelPreroll()
	if err := p.color.PlayAt(now); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if err := p.alpha.PlayAt(now); err != nil {
		return fmt.Errorf("alpha: %w", err)
	}
	return nil
}

func (p *AlphaPair) Stop() {
	p.cancelPreroll()
	p.color.Stop()
	p.alpha.Stop()
}

func (p *AlphaPair) SeekToTimeZero() {
	now := p.clock.Now()
	p.color.rewind(now)
	p.alpha.rewind(now)
	p.rearm()
}

func (p *AlphaPair) Restart() error {
	if p.IsPlaying() {
		p.SeekToTimeZero()
		return nil
	}
	p.SeekToTimeZero()
	return p.Play()
}

func (p *AlphaPair) cancelPreroll() {
	p.generation++
	p.prerolling = false
	p.prerollReady.Take()
	p.asyncReadyToPlay.Take()
}

// rearm resets per-pass state. The held frame belongs to the previous pass
// and is no longer returned; its buffers stay retained until the next
// agreement replaces them.
func (p *AlphaPair) rearm() {
	p.finishedFired = false
	p.misses = 0
	p.desynced = false
	p.held = nil
}

// hold makes the pair of cf and af the held frame, retaining both source
// frames before dropping the previous ones. It returns nil when either
// stream superseded its frame since the pull.
func (p *AlphaPair) hold(cf, af *Frame) *Frame {
	if !p.color.slots.retain(cf) {
		return nil
	}
	if !p.alpha.slots.retain(af) {
		cf.release()
		return nil
	}
	p.heldColor.release()
	p.heldAlpha.release()
	p.held = &Frame{
		Color:            cf.Color,
		Alpha:            af.Color,
		Number:           cf.Number,
		PresentationTime: cf.PresentationTime,
	}
	p.heldColor, p.heldAlpha = cf, af
	return p.held
}

func (p *AlphaPair) dropHeld() {
	p.heldColor.release()
	p.heldAlpha.release()
	p.held, p.heldColor, p.heldAlpha = nil, nil, nil
}

// FrameForHostTime pulls both streams and returns a frame only when their
// numbers agree. Otherwise it returns the last agreeing frame.
func (p *AlphaPair) FrameForHostTime(hostTime, hostPresentationTime time.Duration) (*Frame, error) {
	cf, cerr := p.color.FrameForHostTime(hostTime, hostPresentationTime)
	af, aerr := p.alpha.FrameForHostTime(hostTime, hostPresentationTime)

	if cerr == nil && aerr == nil && cf.Number == af.Number {
		f := p.held
		// A pair of the same two frames is the same frame
		if f == nil || cf != p.heldColor || af != p.heldAlpha {
			f = p.hold(cf, af)
		}
		if f != nil {
			p.agreed++
			if p.desynced {
				p.logger.Info("Color and alpha back in sync at frame %d", f.Number)
			}
			p.misses = 0
			p.desynced = false
			return f, nil
		}
	}

	if errors.Is(cerr, ErrUnresolvable) && errors.Is(aerr, ErrUnresolvable) {
		return nil, ErrUnresolvable
	}

	p.mismatched++
	p.misses++
	if p.misses >= p.desyncPulls && !p.desynced {
		p.desynced = true
		p.episodes++
		cn, an := frameNumberOrNone(cf), frameNumberOrNone(af)
		p.logger.Warn("Color and alpha out of sync: color frame %d, alpha frame %d", cn, an)
		if p.onDesync != nil {
			p.onDesync(cn, an)
		}
	}
	if p.held != nil {
		return p.held, nil
	}
	return nil, ErrFrameNotYetAvailable
}

func frameNumberOrNone(f *Frame) int {
	if f == nil {
		return -1
	}
	return f.Number
}

// FinalFrameHostTime follows the color stream.
func (p *AlphaPair) FinalFrameHostTime() (time.Duration, bool) {
	return p.color.FinalFrameHostTime()
}

// Stats returns the agreement counters together with both stream counters.
// Call from the presentation context.
func (p *AlphaPair) Stats() AlphaStats {
	return AlphaStats{
		Color:          p.color.Stats(),
		Alpha:          p.alpha.Stats(),
		Agreed:         p.agreed,
		Mismatched:     p.mismatched,
		DesyncEpisodes: p.episodes,
	}
}

// Close closes both streams.
func (p *AlphaPair) Close() error {
	p.dropHeld()
	return errors.Join(p.color.Close(), p.alpha.Close())
}

func (p *AlphaPair) String() string {
	return fmt.Sprintf("alpha pair %s (%s / %s)", p.uid, p.color.State(), p.alpha.State())
}
