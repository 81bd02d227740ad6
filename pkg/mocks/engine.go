// Package mocks provides mock implementations for testing.
package mocks

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

// Buffer is a mock implementation of ports.ImageBuffer.
type Buffer struct {
	pts       time.Duration
	img       image.Image
	released  atomic.Bool
	onRelease func()
}

// NewBuffer creates a buffer presented at pts.
func NewBuffer(pts time.Duration) *Buffer {
	return &Buffer{pts: pts}
}

func (b *Buffer) PresentationTime() time.Duration {
	return b.pts
}

func (b *Buffer) Image() image.Image {
	if b.img != nil {
		return b.img
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func (b *Buffer) Release() {
	if b.released.CompareAndSwap(false, true) && b.onRelease != nil {
		b.onRelease()
	}
}

// Released reports whether Release was called.
func (b *Buffer) Released() bool {
	return b.released.Load()
}

var _ ports.ImageBuffer = (*Buffer)(nil)

// Engine is a scripted implementation of ports.DecodeEngine.
//
// By default readiness and preroll complete synchronously and every frame
// is available. Set ManualReady or ManualPreroll to complete them from the
// test with CompleteReady and CompletePreroll, and Hold to make frames pending.
type Engine struct {
	mu sync.Mutex

	DurationValue      time.Duration
	FrameDurationValue time.Duration
	Width, Height      int

	// ReadyResult is reported to RequestReady.
	ReadyResult   bool
	ManualReady   bool
	ManualPreroll bool

	ProduceBufferFunc func(target time.Duration) (ports.PixelBuffer, bool)
	CloseFunc         func() error

	readyCb   func(bool)
	prerollCb func(bool)
	held      map[int]bool

	seeks        []time.Duration
	rates        []float64
	prerollRates []float64
	targets      []time.Duration
	buffers      []*Buffer
	released     atomic.Int64
	closed       bool
}

// NewEngine creates an engine for a clip of duration made of frames of frameDuration.
func NewEngine(duration, frameDuration time.Duration) *Engine {
	return &Engine{
		DurationValue:      duration,
		FrameDurationValue: frameDuration,
		Width:              1920,
		Height:             1080,
		ReadyResult:        true,
		held:               make(map[int]bool),
	}
}

func (m *Engine) RequestReady(onReady func(success bool)) {
	m.mu.Lock()
	if m.ManualReady {
		m.readyCb = onReady
		m.mu.Unlock()
		return
	}
	ok := m.ReadyResult
	m.mu.Unlock()
	onReady(ok)
}

// CompleteReady reports readiness to a pending RequestReady.
func (m *Engine) CompleteReady(ok bool) bool {
	m.mu.Lock()
	cb := m.readyCb
	m.readyCb = nil
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(ok)
	return true
}

func (m *Engine) Preroll(rate float64, done func(finished bool)) {
	m.mu.Lock()
	m.prerollRates = append(m.prerollRates, rate)
	if m.ManualPreroll {
		m.prerollCb = done
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	done(true)
}

// CompletePreroll reports the outcome of a pending Preroll.
func (m *Engine) CompletePreroll(finished bool) bool {
	m.mu.Lock()
	cb := m.prerollCb
	m.prerollCb = nil
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(finished)
	return true
}

// PrerollPending reports whether a Preroll awaits CompletePreroll.
func (m *Engine) PrerollPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prerollCb != nil
}

func (m *Engine) Seek(itemTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks = append(m.seeks, itemTime)
}

func (m *Engine) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, rate)
}

// Hold makes frame n pending until Unhold.
func (m *Engine) Hold(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[n] = true
}

func (m *Engine) Unhold(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, n)
}

func (m *Engine) ProduceBuffer(target time.Duration) (ports.PixelBuffer, bool) {
	if m.ProduceBufferFunc != nil {
		return m.ProduceBufferFunc(target)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, target)

	fd := m.FrameDurationValue
	n := 0
	if target > 0 && fd > 0 {
		n = int((target + fd/2) / fd)
	}
	if last := m.lastFrame(); n > last {
		n = last
	}
	if m.held[n] {
		return nil, false
	}
	b := &Buffer{
		pts:       time.Duration(n) * fd,
		onRelease: func() { m.released.Add(1) },
	}
	m.buffers = append(m.buffers, b)
	return b, true
}

func (m *Engine) lastFrame() int {
	fd := m.FrameDurationValue
	if fd <= 0 {
		return 0
	}
	n := int((m.DurationValue + fd/2) / fd)
	if n < 1 {
		return 0
	}
	return n - 1
}

func (m *Engine) Duration() time.Duration {
	return m.DurationValue
}

func (m *Engine) FrameDuration() time.Duration {
	return m.FrameDurationValue
}

func (m *Engine) Dimensions() (int, int) {
	return m.Width, m.Height
}

func (m *Engine) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Seeks returns the recorded Seek calls.
func (m *Engine) Seeks() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seeks...)
}

// Rates returns the recorded SetRate calls.
func (m *Engine) Rates() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.rates...)
}

// PrerollRates returns the recorded Preroll rates.
func (m *Engine) PrerollRates() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.prerollRates...)
}

// Targets returns the recorded ProduceBuffer targets.
func (m *Engine) Targets() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.targets...)
}

// Buffers returns every buffer handed out.
func (m *Engine) Buffers() []*Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Buffer(nil), m.buffers...)
}

// ReleasedCount returns how many handed-out buffers were released.
func (m *Engine) ReleasedCount() int {
	return int(m.released.Load())
}

// Closed reports whether Close was called.
func (m *Engine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.DecodeEngine = (*Engine)(nil)
