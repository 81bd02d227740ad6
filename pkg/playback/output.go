package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/alphaplay/pkg/ports"
)

// OutputOption configures an Output.
type OutputOption func(*Output)

// WithUID sets the stream identifier used in logs. A random uid is used otherwise.
func WithUID(uid string) OutputOption {
	return func(o *Output) {
		o.uid = uid
	}
}

// WithLastSecondDelta sets how long before the final frame the last-second
// callback fires.
func WithLastSecondDelta(d time.Duration) OutputOption {
	return func(o *Output) {
		if d >= 0 {
			o.lastSecondDelta = d
		}
	}
}

// WithInlineProduce runs produce requests on the calling goroutine instead of
// a worker, which makes frame production deterministic.
func WithInlineProduce() OutputOption {
	return func(o *Output) {
		o.inline = true
	}
}

// Output drives a single decode engine and hands out frames for host times.
//
// All methods except Stats must be called from the presentation context,
// the goroutine that drains queue. Engine callbacks are posted to queue
// and take effect on the next Drain.
type Output struct {
	uid    string
	engine ports.DecodeEngine
	clock  ports.HostClock
	queue  *Queue
	logger ports.Logger

	lastSecondDelta time.Duration
	inline          bool

	state     StreamState
	timing    ClipTiming
	mapper    Mapper
	selector  Selector
	playRate  float64
	seekTime  time.Duration
	secondary bool
	stopped   bool

	prerollRequested bool
	prerolled        bool

	loaded           oneShot[func(bool)]
	prerollReady     oneShot[func()]
	asyncReadyToPlay oneShot[func()]

	callbacks       Callbacks
	lastSecondFired bool
	finalFrameFired bool
	finishedFired   bool
	finalFrameHost  time.Duration
	finalFrameKnown bool

	epoch      epochCounter
	slots      bufferSlots
	requests   *mailbox
	workerDone chan struct{}
	closeOnce  sync.Once
	closeErr   error

	stats outputCounters
}

var _ Source = (*Output)(nil)

// NewOutput creates an Output for engine. Times come from clock; engine
// callbacks are marshalled through queue.
func NewOutput(engine ports.DecodeEngine, clock ports.HostClock, queue *Queue, logger ports.Logger, opts ...OutputOption) *Output {
	o := &Output{
		engine:          engine,
		clock:           clock,
		queue:           queue,
		lastSecondDelta: DefaultLastSecondDelta,
		playRate:        1,
		requests:        newMailbox(),
		workerDone:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.uid == "" {
		o.uid = uuid.NewString()[:8]
	}
	o.logger = logger.WithComponent("output:" + o.uid)

	if o.inline {
		close(o.workerDone)
	} else {
		go o.runProducer()
	}
	return o
}

// ID returns the stream uid.
func (o *Output) ID() string {
	return o.uid
}

// OnLoaded sets the one-shot load callback.
func (o *Output) OnLoaded(fn func(ok bool)) {
	o.loaded.Set(fn)
}

// SetSecondary marks the output as a later loop entry.
func (o *Output) SetSecondary(secondary bool) {
	o.secondary = secondary
}

// SetCallbacks replaces the lifecycle callbacks.
func (o *Output) SetCallbacks(cb Callbacks) {
	o.callbacks = cb
}

// Timing returns the loaded clip timing. It is zero before ReadyToPlay.
func (o *Output) Timing() ClipTiming {
	return o.timing
}

// State returns the lifecycle state.
func (o *Output) State() StreamState {
	return o.state
}

// IsReadyToPlay reports whether clip timing is known.
func (o *Output) IsReadyToPlay() bool {
	return o.state >= StateReadyToPlay
}

// IsPrerolled reports whether a preroll completed and no start consumed it yet.
func (o *Output) IsPrerolled() bool {
	return o.prerolled
}

// IsPlaying reports whether the output runs at a non-zero rate.
func (o *Output) IsPlaying() bool {
	if o.state != StatePlaying && o.state != StateLastSecond {
		return false
	}
	a, ok := o.mapper.Current()
	return ok && a.Rate != 0
}

// IsFinishedPlaying reports whether the final frame has been held for its
// full display interval.
func (o *Output) IsFinishedPlaying() bool {
	return o.state == StateFinished
}

// HasMoreFrames reports whether frames remain before the end of the clip.
func (o *Output) HasMoreFrames() bool {
	return o.state != StateFinished
}

// Rate returns the current playback rate. Zero while stopped or paused.
func (o *Output) Rate() float64 {
	a, ok := o.mapper.Current()
	if !ok {
		return 0
	}
	return a.Rate
}

// Load starts loading the asset.
func (o *Output) Load() {
	if o.state != StateUnloaded {
		return
	}
	o.state = StateLoading
	o.logger.Debug("Loading asset")
	o.engine.RequestReady(func(ok bool) {
		o.queue.Post(func() { o.tracksReady(ok) })
	})
}

// tracksReady applies the engine's load outcome.
func (o *Output) tracksReady(ok bool) {
	if o.state != StateLoading {
		return
	}

	var duration, frameDuration time.Duration
	if ok {
		duration = o.engine.Duration()
		frameDuration = o.engine.FrameDuration()
		if duration <= 0 || frameDuration <= 0 {
			o.logger.Warn("Asset reported invalid timing: duration %s, frame duration %s", duration, frameDuration)
			ok = false
		}
	}
	if !ok {
		o.logger.Warn("Asset failed to load")
		o.fireLoaded(false)
		return
	}

	width, height := o.engine.Dimensions()
	o.timing = newClipTiming(duration, frameDuration, width, height, o.lastSecondDelta)
	o.mapper.SetDuration(duration)
	o.selector = NewSelector(frameDuration, o.timing.LastFrame())
	o.state = StateReadyToPlay
	o.logger.Info("Asset ready: %dx%d, %d frames at %.2f fps, duration %s",
		width, height, o.timing.FrameCount, o.timing.FPS(), duration)

	o.fireLoaded(true)
	if o.seekTime != 0 {
		o.engine.Seek(o.seekTime)
	}
	if o.prerollRequested {
		o.startPreroll()
	}
}

func (o *Output) fireLoaded(ok bool) {
	fn, pending := o.loaded.Take()
	if !pending {
		return
	}
	if o.secondary {
		o.logger.Debug("Load callback suppressed for secondary loop entry")
		return
	}
	fn(ok)
}

// PlayWithPreroll buffers ahead at rate. onReady runs once the engine reports
// enough is buffered, unless DeferStartUntilReady replaces it first.
func (o *Output) PlayWithPreroll(rate float64, onReady func()) {
	if rate != 0 {
		o.playRate = rate
	}
	o.prerollReady.Set(onReady)
	o.prerolled = false
	o.prerollRequested = true
	o.stopped = false

	switch o.state {
	case StateUnloaded:
		o.Load()
	case StateLoading:
		// starts from tracksReady
	default:
		o.startPreroll()
	}
}

func (o *Output) startPreroll() {
	epoch := o.epoch.current()
	o.logger.Debug("Preroll at rate %.2f", o.playRate)
	o.engine.Preroll(o.playRate, func(finished bool) {
		o.queue.Post(func() { o.prerollDone(epoch, finished) })
	})
}

// prerollDone applies the engine's preroll outcome. A completion from before
// a stop or seek is stale and ignored.
func (o *Output) prerollDone(epoch uint64, finished bool) {
	if epoch != o.epoch.current() || !o.prerollRequested {
		o.stats.stale.Add(1)
		o.logger.Debug("Discarded stale preroll completion")
		return
	}
	if !finished {
		o.logger.Debug("Preroll interrupted, starting anyway")
	}
	o.prerollRequested = false
	o.prerolled = true
	o.request(o.seekTime)

	if fn, ok := o.asyncReadyToPlay.Take(); ok {
		o.prerollReady.Take()
		o.logger.Debug("Preroll finished, running deferred start")
		fn()
		return
	}
	if fn, ok := o.prerollReady.Take(); ok {
		fn()
	}
}

// DeferStartUntilReady runs fn as soon as the output is prerolled,
// replacing any pending preroll callback.
func (o *Output) DeferStartUntilReady(fn func()) {
	if fn == nil {
		return
	}
	if o.prerolled {
		fn()
		return
	}
	o.asyncReadyToPlay.Set(fn)
	if !o.prerollRequested {
		o.PlayWithPreroll(o.playRate, nil)
	}
}

// SyncStart starts playback so that itemTime is shown at atHostTime.
func (o *Output) SyncStart(rate float64, itemTime, atHostTime time.Duration) error {
	if !o.IsReadyToPlay() {
		return ErrNotReadyToPlay
	}
	if itemTime < 0 {
		itemTime = 0
	}
	if itemTime > o.timing.Duration {
		itemTime = o.timing.Duration
	}
	if itemTime != o.seekTime || o.selector.LastReturned() >= 0 || o.state == StateFinished {
		o.seek(itemTime)
	}

	o.mapper.Anchor(SyncAnchor{Rate: rate, ItemTime: itemTime, HostTime: atHostTime})
	if rate != 0 {
		o.playRate = rate
		o.state = StatePlaying
	}
	o.engine.SetRate(rate)
	o.stopped = false
	o.prerolled = false
	o.prerollRequested = false
	o.prerollReady.Take()
	o.asyncReadyToPlay.Take()

	o.logger.Info("Sync start: item %s at host %s, rate %.2f", itemTime, atHostTime, rate)
	o.request(itemTime)
	return nil
}

// SetRate changes the rate at atHostTime, keeping the item time shown at
// that instant continuous.
func (o *Output) SetRate(rate float64, atHostTime time.Duration) {
	if !o.IsReadyToPlay() {
		return
	}
	item := o.seekTime
	if a, ok := o.mapper.Current(); ok {
		item = a.ItemTimeAt(atHostTime)
		if item < 0 {
			item = 0
		}
		if item > o.timing.Duration {
			item = o.timing.Duration
		}
	}
	o.mapper.Anchor(SyncAnchor{Rate: rate, ItemTime: item, HostTime: atHostTime})
	o.engine.SetRate(rate)
	o.stopped = false
	if rate != 0 {
		o.playRate = rate
		if o.state == StateReadyToPlay {
			o.state = StatePlaying
		}
	}
	o.logger.Debug("Rate %.2f at host %s (item %s)", rate, atHostTime, item)
}

// Play starts playback from the current seek position now.
func (o *Output) Play() error {
	return o.PlayAt(o.clock.Now())
}

// PlayAt starts playback from the current seek position at hostTime.
func (o *Output) PlayAt(hostTime time.Duration) error {
	return o.SyncStart(o.playRate, o.seekTime, hostTime)
}

// Stop halts playback. Produce results still in flight are discarded.
// Stopping a stopped output changes nothing.
func (o *Output) Stop() {
	if o.stopped {
		return
	}
	o.stopped = true

	o.slots.rebind(o.epoch.advance())
	o.requests.clear()
	o.engine.SetRate(0)
	o.mapper.Clear()
	o.prerollRequested = false
	o.prerolled = false
	o.prerollReady.Take()
	o.asyncReadyToPlay.Take()
	if o.state == StatePlaying || o.state == StateLastSecond {
		o.state = StateReadyToPlay
	}
	o.logger.Debug("Stopped")
}

// SeekToTimeZero rewinds to the first frame and re-arms the lifecycle
// callbacks. A playing output keeps playing from item time zero now.
func (o *Output) SeekToTimeZero() {
	o.rewind(o.clock.Now())
}

// rewind seeks to item time zero, re-anchoring a live anchor at now.
func (o *Output) rewind(now time.Duration) {
	if !o.IsReadyToPlay() {
		o.seekTime = 0
		return
	}
	a, anchored := o.mapper.Current()
	o.seek(0)
	if anchored {
		o.mapper.Anchor(SyncAnchor{Rate: a.Rate, ItemTime: 0, HostTime: now})
		if a.Rate != 0 {
			o.state = StatePlaying
		}
	}
	o.request(0)
}

// Restart rewinds and plays from the start.
func (o *Output) Restart() error {
	if o.IsPlaying() {
		o.SeekToTimeZero()
		return nil
	}
	o.SeekToTimeZero()
	return o.Play()
}

// seek moves the engine to itemTime and invalidates everything buffered for
// the old position.
func (o *Output) seek(itemTime time.Duration) {
	o.slots.reset(o.epoch.advance())
	o.requests.clear()
	o.engine.Seek(itemTime)
	o.seekTime = itemTime
	o.selector.Reset()
	o.lastSecondFired = false
	o.finalFrameFired = false
	o.finishedFired = false
	o.finalFrameKnown = false
	o.stopped = false
	if o.state > StatePlaying {
		o.state = StateReadyToPlay
	}
}

// FrameForHostTime returns the frame to display at hostPresentationTime and
// fires any lifecycle edges the new item time crosses.
func (o *Output) FrameForHostTime(hostTime, hostPresentationTime time.Duration) (*Frame, error) {
	if hostPresentationTime == 0 {
		hostPresentationTime = hostTime
	}
	if !o.IsReadyToPlay() {
		return nil, ErrUnresolvable
	}
	m, err := o.mapper.Map(hostPresentationTime)
	if err != nil {
		return nil, err
	}

	o.trackLastSecond(m.ItemTime)

	fd := o.timing.FrameDuration
	want := o.selector.Target(m.ItemTime)
	if !o.slots.has(want) {
		o.request(FrameTime(want, fd))
	} else if want < o.timing.LastFrame() {
		o.request(FrameTime(want+1, fd))
	}

	previous, current := o.slots.snapshot()
	f, err := o.selector.Select(m.ItemTime, previous, current)
	if err != nil {
		o.stats.notYetAvailable.Add(1)
	} else {
		o.stats.selected.Add(1)
		if f.Number == o.timing.LastFrame() {
			o.trackFinalFrame(hostPresentationTime)
		}
	}

	if m.Complete && o.state != StateFinished {
		o.trackFinalFrame(hostPresentationTime)
		o.state = StateFinished
		o.logger.Info("Playback finished")
		if !o.finishedFired {
			o.finishedFired = true
			if o.callbacks.Finished != nil {
				o.callbacks.Finished()
			}
		}
	}
	return f, err
}

func (o *Output) trackLastSecond(item time.Duration) {
	if o.lastSecondFired || o.state != StatePlaying || item < o.timing.LastSecondFrameTime {
		return
	}
	o.lastSecondFired = true
	o.state = StateLastSecond
	o.logger.Debug("Entered last second at item %s", item)
	if o.callbacks.LastSecond != nil {
		o.callbacks.LastSecond()
	}
}

// trackFinalFrame records when the final frame started display. The host
// time is derived from the anchor so it does not depend on tick jitter.
func (o *Output) trackFinalFrame(presented time.Duration) {
	if o.finalFrameFired {
		return
	}
	o.finalFrameFired = true
	o.finalFrameHost = presented
	if a, ok := o.mapper.Current(); ok {
		if h, ok := a.HostTimeAt(o.timing.FinalFrameTime); ok {
			o.finalFrameHost = h
		}
	}
	o.finalFrameKnown = true
	if o.callbacks.FinalFrameShown != nil {
		o.callbacks.FinalFrameShown()
	}
}

// FinalFrameHostTime returns the host time the final frame began display.
func (o *Output) FinalFrameHostTime() (time.Duration, bool) {
	return o.finalFrameHost, o.finalFrameKnown
}

// Stats returns produce and selection counters. Safe from any goroutine.
func (o *Output) Stats() OutputStats {
	return o.stats.snapshot()
}

// Close stops the produce worker, releases buffered frames and closes the engine.
func (o *Output) Close() error {
	o.closeOnce.Do(func() {
		o.epoch.advance()
		o.requests.close()
		<-o.workerDone
		o.slots.releaseAll()
		o.mapper.Clear()
		o.closeErr = o.engine.Close()
	})
	return o.closeErr
}

func (o *Output) String() string {
	return fmt.Sprintf("output %s (%s, last frame %d)", o.uid, o.state, o.selector.LastReturned())
}

// request asks for the buffer nearest target.
func (o *Output) request(target time.Duration) {
	req := produceRequest{
		epoch:         o.epoch.current(),
		target:        target,
		frameDuration: o.timing.FrameDuration,
	}
	if o.inline {
		o.produce(req)
		return
	}
	if o.requests.put(req) {
		o.stats.overwritten.Add(1)
	}
}

func (o *Output) runProducer() {
	defer close(o.workerDone)
	for {
		req, ok := o.requests.take()
		if !ok {
			return
		}
		o.produce(req)
	}
}

// produce runs one request against the engine and publishes the result.
func (o *Output) produce(req produceRequest) {
	if req.epoch != o.epoch.current() {
		o.stats.stale.Add(1)
		return
	}
	buf, ok := o.engine.ProduceBuffer(req.target)
	if !ok {
		o.stats.pending.Add(1)
		return
	}
	f := newFrame(buf, req.frameDuration)
	switch o.slots.publish(f, req.epoch) {
	case published:
		o.stats.produced.Add(1)
	case publishStale:
		o.stats.stale.Add(1)
		o.logger.Debug("Discarded stale %s", f)
	case publishDuplicate:
		o.stats.duplicates.Add(1)
	}
}
