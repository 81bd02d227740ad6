// Package patternengine provides a synthetic decode engine that draws
// numbered test-pattern frames. It stands in for a real decoder in demos
// and timing tests, with configurable load and preroll latency.
package patternengine

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/user/alphaplay/pkg/ports"
)

// ErrLoadFailed is reported through RequestReady when Config.Fail is set.
var ErrLoadFailed = errors.New("patternengine: load failed")

// Config describes a synthetic clip.
type Config struct {
	Label        string
	FPS          float64
	Duration     time.Duration
	Width        int
	Height       int
	ReadyDelay   time.Duration
	PrerollDelay time.Duration

	// Matte draws a grayscale alpha matte instead of a color picture.
	Matte bool

	// Fail makes RequestReady report failure.
	Fail bool
}

// DefaultConfig returns a two-second 30 fps 320x180 clip.
func DefaultConfig() Config {
	return Config{
		Label:    "pattern",
		FPS:      30,
		Duration: 2 * time.Second,
		Width:    320,
		Height:   180,
	}
}

// Engine implements ports.DecodeEngine by drawing frames on demand.
type Engine struct {
	cfg           Config
	frameDuration time.Duration
	frameCount    int
	hue           float64

	mu       sync.Mutex
	ready    bool
	closed   bool
	position time.Duration
	rate     float64
	cache    map[int]image.Image

	outstanding atomic.Int64
	produced    atomic.Int64
}

// New creates an Engine. Zero fields take DefaultConfig values.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.Label == "" {
		cfg.Label = def.Label
	}

	fd := time.Duration(float64(time.Second) / cfg.FPS)
	h := fnv.New32a()
	h.Write([]byte(cfg.Label))

	return &Engine{
		cfg:           cfg,
		frameDuration: fd,
		frameCount:    int((cfg.Duration + fd - 1) / fd),
		hue:           float64(h.Sum32()%360) / 360,
		cache:         make(map[int]image.Image),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// FrameCount returns the number of frames in the clip.
func (e *Engine) FrameCount() int {
	return e.frameCount
}

// RequestReady reports readiness after the configured delay.
func (e *Engine) RequestReady(onReady func(success bool)) {
	after(e.cfg.ReadyDelay, func() {
		e.mu.Lock()
		ok := !e.cfg.Fail && !e.closed
		e.ready = ok
		e.mu.Unlock()
		if onReady != nil {
			onReady(ok)
		}
	})
}

// Preroll reports completion after the configured delay.
func (e *Engine) Preroll(rate float64, done func(finished bool)) {
	after(e.cfg.PrerollDelay, func() {
		e.mu.Lock()
		ok := e.ready && !e.closed
		e.mu.Unlock()
		if done != nil {
			done(ok)
		}
	})
}

func after(d time.Duration, fn func()) {
	if d <= 0 {
		go fn()
		return
	}
	time.AfterFunc(d, fn)
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

// ProduceBuffer draws the frame nearest targetItemTime.
func (e *Engine) ProduceBuffer(targetItemTime time.Duration) (ports.PixelBuffer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready || e.closed {
		return nil, false
	}

	n := int((targetItemTime + e.frameDuration/2) / e.frameDuration)
	n = max(0, min(n, e.frameCount-1))

	img, ok := e.cache[n]
	if !ok {
		img = e.draw(n)
		e.cache[n] = img
	}
	pts := time.Duration(n) * e.frameDuration
	e.position = pts + e.frameDuration

	e.outstanding.Add(1)
	e.produced.Add(1)
	return &Buffer{pts: pts, img: img, engine: e}, true
}

// Duration returns the clip duration.
func (e *Engine) Duration() time.Duration {
	return e.cfg.Duration
}

// FrameDuration returns the frame duration.
func (e *Engine) FrameDuration() time.Duration {
	return e.frameDuration
}

// Dimensions returns the frame size.
func (e *Engine) Dimensions() (width, height int) {
	return e.cfg.Width, e.cfg.Height
}

// Outstanding returns how many produced buffers are not yet released.
func (e *Engine) Outstanding() int64 {
	return e.outstanding.Load()
}

// Produced returns how many buffers were handed out.
func (e *Engine) Produced() int64 {
	return e.produced.Load()
}

// Close stops producing frames and drops the frame cache.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cache = make(map[int]image.Image)
	return nil
}

func (e *Engine) draw(n int) image.Image {
	w, h := float64(e.cfg.Width), float64(e.cfg.Height)
	dc := gg.NewContext(e.cfg.Width, e.cfg.Height)
	progress := float64(n) / float64(max(1, e.frameCount-1))

	if e.cfg.Matte {
		// Black background with a white disc that grows over the clip.
		dc.SetColor(color.Black)
		dc.Clear()
		dc.SetColor(color.White)
		r := math.Min(w, h) * (0.2 + 0.3*progress)
		dc.DrawCircle(w/2, h/2, r)
		dc.Fill()
		return dc.Image()
	}

	dc.SetColor(hsv(e.hue, 0.55, 0.75))
	dc.Clear()

	// Progress bar
	dc.SetColor(color.RGBA{A: 120})
	dc.DrawRectangle(0, h-6, w, 6)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawRectangle(0, h-6, w*progress, 6)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	scale := math.Max(1, math.Floor(h/60))
	dc.Push()
	dc.ScaleAbout(scale, scale, w/2, h/2)
	dc.DrawStringAnchored(fmt.Sprintf("%d", n), w/2, h/2, 0.5, 0.5)
	dc.Pop()
	dc.DrawStringAnchored(fmt.Sprintf("%s  %.2f fps", e.cfg.Label, e.cfg.FPS), 6, 8, 0, 0.5)
	return dc.Image()
}

// hsv converts hue, saturation and value in [0, 1] to an RGBA color.
func hsv(hue, s, v float64) color.RGBA {
	i := math.Floor(hue * 6)
	f := hue*6 - i
	p, q, t := v*(1-s), v*(1-f*s), v*(1-(1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

// Buffer is one drawn frame.
type Buffer struct {
	pts      time.Duration
	img      image.Image
	engine   *Engine
	released atomic.Bool
}

// PresentationTime returns the frame's presentation time.
func (b *Buffer) PresentationTime() time.Duration {
	return b.pts
}

// Image returns the drawn frame.
func (b *Buffer) Image() image.Image {
	return b.img
}

// Release returns the buffer to the engine. The image stays valid.
func (b *Buffer) Release() {
	if b.released.CompareAndSwap(false, true) {
		b.engine.outstanding.Add(-1)
	}
}

// Ensure Engine implements ports.DecodeEngine
var _ ports.DecodeEngine = (*Engine)(nil)

// Ensure Buffer implements ports.ImageBuffer
var _ ports.ImageBuffer = (*Buffer)(nil)
