package mp4engine

import (
	"errors"
	"testing"
	"time"

	"github.com/user/alphaplay/pkg/mocks"
)

func loadedEngine(t *testing.T) *Engine {
	t.Helper()
	fs := mocks.NewFileSystem().AddAsset("clip.mp4", buildFragmented(t, 10, 2500, 100))

	e := New(fs, "clip.mp4")
	if !waitReady(t, e) {
		t.Fatalf("expected load to succeed: %v", e.Err())
	}
	if n := fs.Reads("clip.mp4"); n != 1 {
		t.Errorf("expected the asset to be read once, got %d", n)
	}
	return e
}

func waitReady(t *testing.T, e *Engine) bool {
	t.Helper()
	ready := make(chan bool, 1)
	e.RequestReady(func(ok bool) { ready <- ok })
	select {
	case ok := <-ready:
		return ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ready")
		return false
	}
}

func TestEngine_RequestReady(t *testing.T) {
	e := loadedEngine(t)

	if e.Duration() != 400*time.Millisecond {
		t.Errorf("expected duration 400ms, got %s", e.Duration())
	}
	if e.FrameDuration() != 40*time.Millisecond {
		t.Errorf("expected frame duration 40ms, got %s", e.FrameDuration())
	}
	w, h := e.Dimensions()
	if w != 64 || h != 48 {
		t.Errorf("expected 64x48, got %dx%d", w, h)
	}
	if e.Track() == nil {
		t.Error("expected track after load")
	}
}

func TestEngine_LoadFailure(t *testing.T) {
	e := New(mocks.NewFileSystem(), "missing.mp4")
	if waitReady(t, e) {
		t.Fatal("expected load to fail")
	}
	if e.Err() == nil {
		t.Error("expected load error")
	}
	if e.Duration() != 0 {
		t.Errorf("expected zero duration before load, got %s", e.Duration())
	}
	if _, ok := e.ProduceBuffer(0); ok {
		t.Error("expected no buffer before load")
	}
}

func TestEngine_ProduceBuffer(t *testing.T) {
	e := loadedEngine(t)

	buf, ok := e.ProduceBuffer(130 * time.Millisecond)
	if !ok {
		t.Fatal("expected a buffer")
	}
	if buf.PresentationTime() != 120*time.Millisecond {
		t.Errorf("expected presentation time 120ms, got %s", buf.PresentationTime())
	}
	au := buf.(*AccessUnit)
	if au.Index() != 3 || au.KeyIndex() != 0 {
		t.Errorf("expected index 3 keyed on 0, got %d keyed on %d", au.Index(), au.KeyIndex())
	}
	if au.Data()[0] != 3 {
		t.Errorf("unexpected payload %v", au.Data())
	}
	if e.Outstanding() != 1 {
		t.Errorf("expected 1 outstanding buffer, got %d", e.Outstanding())
	}

	buf.Release()
	buf.Release()
	if e.Outstanding() != 0 {
		t.Errorf("expected release to be counted once, got %d outstanding", e.Outstanding())
	}
	if e.Produced() != 1 {
		t.Errorf("expected 1 produced buffer, got %d", e.Produced())
	}
}

func TestEngine_Preroll(t *testing.T) {
	e := New(mocks.NewFileSystem(), "missing.mp4")
	done := make(chan bool, 1)
	e.Preroll(1.0, func(finished bool) { done <- finished })
	if <-done {
		t.Error("expected preroll to fail before load")
	}

	e = loadedEngine(t)
	e.Seek(200 * time.Millisecond)
	e.SetRate(1.0)
	e.Preroll(1.0, func(finished bool) { done <- finished })
	if !<-done {
		t.Error("expected preroll to finish after load")
	}
	if e.Rate() != 1.0 {
		t.Errorf("expected rate 1.0, got %f", e.Rate())
	}
}

func TestEngine_Close(t *testing.T) {
	e := loadedEngine(t)
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := e.ProduceBuffer(0); ok {
		t.Error("expected no buffer after close")
	}
	if err := e.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on second close, got %v", err)
	}
}
