// Package mp4engine provides a decode engine over MP4 clips parsed with mp4ff.
//
// The engine indexes the video track and hands out access units in
// presentation order. Pixel decoding is left to the consumer.
package mp4engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("mp4engine: engine closed")

// Engine implements ports.DecodeEngine for one MP4 asset.
type Engine struct {
	fs   ports.FileSystem
	path string

	mu       sync.Mutex
	track    *Track
	loadErr  error
	position time.Duration
	rate     float64
	closed   bool

	outstanding atomic.Int64
	produced    atomic.Int64
}

// New creates an engine for the asset at path. Nothing is read until RequestReady.
func New(fs ports.FileSystem, path string) *Engine {
	return &Engine{fs: fs, path: path}
}

// Path returns the asset path.
func (e *Engine) Path() string {
	return e.path
}

// RequestReady reads and indexes the asset in the background.
func (e *Engine) RequestReady(onReady func(success bool)) {
	go func() {
		err := e.load()
		if onReady != nil {
			onReady(err == nil)
		}
	}()
}

func (e *Engine) load() error {
	e.mu.Lock()
	if e.track != nil {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	data, err := e.fs.ReadFile(e.path)
	if err == nil {
		var track *Track
		track, err = Probe(data)
		if err == nil {
			e.mu.Lock()
			e.track = track
			e.mu.Unlock()
			return nil
		}
	}

	err = fmt.Errorf("load %s: %w", e.path, err)
	e.mu.Lock()
	e.loadErr = err
	e.mu.Unlock()
	return err
}

// Err returns the load error, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// Track returns the indexed track, or nil before a successful load.
func (e *Engine) Track() *Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.track
}

// Preroll reports ready once the sample at the current position is indexed.
// The whole track is resident after load, so this only has to wait for it.
func (e *Engine) Preroll(rate float64, done func(finished bool)) {
	go func() {
		e.mu.Lock()
		ok := e.track != nil && !e.closed
		e.mu.Unlock()
		if done != nil {
			done(ok)
		}
	}()
}

// Seek moves the decode position.
func (e *Engine) Seek(itemTime time.Duration) {
	e.mu.Lock()
	e.position = itemTime
	e.mu.Unlock()
}

// SetRate records the decode rate.
func (e *Engine) SetRate(rate float64) {
	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()
}

// Rate returns the last rate set.
func (e *Engine) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

// ProduceBuffer returns the access unit displayed at targetItemTime.
func (e *Engine) ProduceBuffer(targetItemTime time.Duration) (ports.PixelBuffer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil || e.closed {
		return nil, false
	}

	index := e.track.SampleAt(targetItemTime)
	sample := e.track.Samples[index]
	e.position = sample.PresentationTime + sample.Duration

	e.outstanding.Add(1)
	e.produced.Add(1)
	return &AccessUnit{
		sample:   sample,
		index:    index,
		keyIndex: e.track.SyncBefore(index),
		engine:   e,
	}, true
}

// Duration returns the clip duration.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return 0
	}
	return e.track.Duration()
}

// FrameDuration returns the nominal frame duration.
func (e *Engine) FrameDuration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return 0
	}
	return e.track.FrameDuration()
}

// Dimensions returns the coded picture size.
func (e *Engine) Dimensions() (width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return 0, 0
	}
	return e.track.Width, e.track.Height
}

// Outstanding returns how many produced buffers are not yet released.
func (e *Engine) Outstanding() int64 {
	return e.outstanding.Load()
}

// Produced returns how many buffers were handed out.
func (e *Engine) Produced() int64 {
	return e.produced.Load()
}

// Close stops producing buffers.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	return nil
}

// AccessUnit is one compressed sample handed out by the engine.
// Release only updates bookkeeping; the data stays valid while the
// engine's track is referenced.
type AccessUnit struct {
	sample   Sample
	index    int
	keyIndex int
	engine   *Engine
	released atomic.Bool
}

// PresentationTime returns the sample's presentation time.
func (a *AccessUnit) PresentationTime() time.Duration {
	return a.sample.PresentationTime
}

// Data returns the compressed sample payload.
func (a *AccessUnit) Data() []byte {
	return a.sample.Data
}

// Sync reports whether the sample is a sync sample.
func (a *AccessUnit) Sync() bool {
	return a.sample.Sync
}

// Index returns the sample's position in presentation order.
func (a *AccessUnit) Index() int {
	return a.index
}

// KeyIndex returns the index of the sync sample decoding must start from.
func (a *AccessUnit) KeyIndex() int {
	return a.keyIndex
}

// Release returns the buffer to the engine.
func (a *AccessUnit) Release() {
	if a.released.CompareAndSwap(false, true) {
		a.engine.outstanding.Add(-1)
	}
}

// Ensure Engine implements ports.DecodeEngine
var _ ports.DecodeEngine = (*Engine)(nil)

// Ensure AccessUnit implements ports.PixelBuffer
var _ ports.PixelBuffer = (*AccessUnit)(nil)
