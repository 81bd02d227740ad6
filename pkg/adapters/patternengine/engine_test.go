package patternengine

import (
	"image/color"
	"testing"
	"time"

	"github.com/user/alphaplay/pkg/ports"
)

func ready(t *testing.T, e *Engine) bool {
	t.Helper()
	ch := make(chan bool, 1)
	e.RequestReady(func(ok bool) { ch <- ok })
	select {
	case ok := <-ch:
		return ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ready")
		return false
	}
}

func TestNew_Defaults(t *testing.T) {
	e := New(Config{})
	if e.FrameDuration() != time.Second/30 {
		t.Errorf("expected 30 fps frame duration, got %s", e.FrameDuration())
	}
	if e.Duration() != 2*time.Second {
		t.Errorf("expected 2s duration, got %s", e.Duration())
	}
	w, h := e.Dimensions()
	if w != 320 || h != 180 {
		t.Errorf("expected 320x180, got %dx%d", w, h)
	}
	if e.FrameCount() != 60 {
		t.Errorf("expected 60 frames, got %d", e.FrameCount())
	}
}

func TestEngine_FrameCountRoundsUp(t *testing.T) {
	e := New(Config{FPS: 10, Duration: 1050 * time.Millisecond})
	if e.FrameCount() != 11 {
		t.Errorf("expected 11 frames, got %d", e.FrameCount())
	}
}

func TestEngine_ProduceBeforeReady(t *testing.T) {
	e := New(Config{})
	if _, ok := e.ProduceBuffer(0); ok {
		t.Error("expected no buffer before ready")
	}
}

func TestEngine_ProduceBuffer(t *testing.T) {
	e := New(Config{FPS: 10, Duration: time.Second, Width: 64, Height: 36})
	if !ready(t, e) {
		t.Fatal("expected ready")
	}

	tests := []struct {
		target   time.Duration
		expected time.Duration
	}{
		{0, 0},
		{40 * time.Millisecond, 0},
		{50 * time.Millisecond, 100 * time.Millisecond},
		{330 * time.Millisecond, 300 * time.Millisecond},
		{5 * time.Second, 900 * time.Millisecond},
	}
	for _, tt := range tests {
		buf, ok := e.ProduceBuffer(tt.target)
		if !ok {
			t.Fatalf("ProduceBuffer(%s) pending", tt.target)
		}
		if buf.PresentationTime() != tt.expected {
			t.Errorf("ProduceBuffer(%s) = %s, expected %s", tt.target, buf.PresentationTime(), tt.expected)
		}
		img := buf.(ports.ImageBuffer).Image()
		if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 36 {
			t.Errorf("unexpected image size %v", img.Bounds())
		}
		buf.Release()
	}

	if e.Outstanding() != 0 {
		t.Errorf("expected all buffers released, got %d outstanding", e.Outstanding())
	}
	if e.Produced() != int64(len(tests)) {
		t.Errorf("expected %d produced, got %d", len(tests), e.Produced())
	}
}

func TestEngine_Matte(t *testing.T) {
	e := New(Config{Width: 40, Height: 40, Matte: true})
	if !ready(t, e) {
		t.Fatal("expected ready")
	}
	buf, _ := e.ProduceBuffer(0)
	img := buf.(ports.ImageBuffer).Image()

	center := color.GrayModel.Convert(img.At(20, 20)).(color.Gray)
	corner := color.GrayModel.Convert(img.At(0, 0)).(color.Gray)
	if center.Y < 200 {
		t.Errorf("expected white matte center, got %d", center.Y)
	}
	if corner.Y > 50 {
		t.Errorf("expected black matte corner, got %d", corner.Y)
	}
}

func TestEngine_Fail(t *testing.T) {
	e := New(Config{Fail: true})
	if ready(t, e) {
		t.Error("expected load failure")
	}

	done := make(chan bool, 1)
	e.Preroll(1.0, func(finished bool) { done <- finished })
	if <-done {
		t.Error("expected preroll to fail on a failed load")
	}
}

func TestEngine_Delays(t *testing.T) {
	e := New(Config{ReadyDelay: 30 * time.Millisecond, PrerollDelay: 30 * time.Millisecond})
	start := time.Now()
	if !ready(t, e) {
		t.Fatal("expected ready")
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Error("expected ready to wait for the configured delay")
	}

	done := make(chan bool, 1)
	e.Preroll(1.0, func(finished bool) { done <- finished })
	if !<-done {
		t.Error("expected preroll to finish")
	}
}

func TestEngine_Close(t *testing.T) {
	e := New(Config{})
	if !ready(t, e) {
		t.Fatal("expected ready")
	}
	e.Close()
	if _, ok := e.ProduceBuffer(0); ok {
		t.Error("expected no buffer after close")
	}
}
