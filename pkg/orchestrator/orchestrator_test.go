package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/user/alphaplay/pkg/adapters/logger"
	"github.com/user/alphaplay/pkg/mocks"
	"github.com/user/alphaplay/pkg/playback"
	"github.com/user/alphaplay/pkg/player"
	"github.com/user/alphaplay/pkg/ports"
)

const (
	clipDuration  = 500 * time.Millisecond
	frameDuration = 100 * time.Millisecond
	tickInterval  = 10 * time.Millisecond
)

type harness struct {
	orch     *Orchestrator
	clock    *mocks.Clock
	driver   *mocks.Driver
	renderer *mocks.Renderer
	sink     *mocks.FrameSink

	mu      sync.Mutex
	engines []*mocks.Engine
	setup   func(*mocks.Engine)
}

func newHarness(ticks int) *harness {
	h := &harness{
		clock:    mocks.NewClock(0),
		driver:   mocks.NewDriver(0, tickInterval, ticks),
		renderer: &mocks.Renderer{},
		sink:     mocks.NewFrameSink(true),
	}
	h.driver.OnTick = func(t ports.Tick) { h.clock.Set(t.HostTime) }
	h.orch = New(h.factory, h.clock, h.driver, h.renderer, h.sink, logger.NewNoop())
	return h
}

func (h *harness) factory(asset string) (ports.DecodeEngine, error) {
	e := mocks.NewEngine(clipDuration, frameDuration)
	if h.setup != nil {
		h.setup(e)
	}
	h.mu.Lock()
	h.engines = append(h.engines, e)
	h.mu.Unlock()
	return e, nil
}

func testConfig(clips ...player.Clip) Config {
	cfg := DefaultConfig()
	cfg.Clips = clips
	cfg.Player.InlineProduce = true
	cfg.Player.LoopMaxCount = 0
	return cfg
}

func TestOrchestrator_Run_SingleClip(t *testing.T) {
	h := newHarness(200)
	cfg := testConfig(player.Clip{Color: "a.mp4"})
	cfg.SnapshotEvery = 1

	result, err := h.orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Started || !result.Finished {
		t.Errorf("expected started and finished, got %+v", result)
	}
	if result.FreshFrames != 5 {
		t.Errorf("expected 5 frames shown, got %d", result.FreshFrames)
	}
	for i, e := range result.Timeline {
		if e.Frame != i {
			t.Errorf("timeline %d: expected frame %d, got %d", i, i, e.Frame)
		}
	}
	if result.Snapshots != 5 || h.sink.FrameCount() != 5 {
		t.Errorf("expected 5 snapshots, got %d (sink has %d)", result.Snapshots, h.sink.FrameCount())
	}
	if h.renderer.ComposeCount() != 0 {
		t.Errorf("expected no compose for color-only clips, got %d", h.renderer.ComposeCount())
	}

	var timeline []TimelineEntry
	if err := json.Unmarshal(h.sink.TimelineJSON, &timeline); err != nil {
		t.Fatalf("invalid timeline JSON: %v", err)
	}
	if len(timeline) != 5 {
		t.Errorf("expected 5 timeline entries, got %d", len(timeline))
	}

	for _, e := range h.engines {
		if !e.Closed() {
			t.Error("expected engines to be closed after the session")
		}
	}
}

func TestOrchestrator_Run_AlphaLoopTwoInstances(t *testing.T) {
	h := newHarness(400)
	cfg := testConfig(
		player.Clip{Color: "a.mp4", Alpha: "a-alpha.mp4"},
		player.Clip{Color: "b.mp4", Alpha: "b-alpha.mp4"},
	)
	cfg.Loop = true
	cfg.Player.LoopMaxCount = 1
	cfg.Instances = 2
	cfg.SnapshotEvery = 5

	result, err := h.orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Finished {
		t.Error("expected both instances to finish")
	}
	if result.StartSkew != 0 {
		t.Errorf("expected instances to show their first frame on the same tick, skew %s", result.StartSkew)
	}
	if result.LoopCount != 2 {
		t.Errorf("expected loop count 2, got %d", result.LoopCount)
	}
	if result.Transitions != 6 {
		t.Errorf("expected 3 transitions per instance, got %d", result.Transitions)
	}
	if len(h.engines) != 8 {
		t.Errorf("expected 8 engines, got %d", len(h.engines))
	}
	if len(result.Streams) != 4 {
		t.Fatalf("expected 4 streams, got %d", len(result.Streams))
	}
	for _, st := range result.Streams {
		if st.Alpha == nil {
			t.Errorf("stream %s: expected alpha stats", st.Name)
		}
	}
	for _, e := range result.Timeline {
		if !e.Alpha {
			t.Fatalf("expected every frame to carry alpha: %+v", e)
		}
	}
	if h.renderer.ComposeCount() == 0 {
		t.Error("expected alpha snapshots to be composed")
	}

	// Both instances show the same frames in the same order
	var a, b []TimelineEntry
	for _, e := range result.Timeline {
		if e.Instance == 0 {
			a = append(a, e)
		} else {
			b = append(b, e)
		}
	}
	if len(a) != len(b) {
		t.Fatalf("instances showed %d and %d frames", len(a), len(b))
	}
	for i := range a {
		if a[i].HostMs != b[i].HostMs || a[i].Frame != b[i].Frame || a[i].Entry != b[i].Entry {
			t.Errorf("frame %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestOrchestrator_Run_LoadFailure(t *testing.T) {
	h := newHarness(50)
	h.setup = func(e *mocks.Engine) { e.ReadyResult = false }

	_, err := h.orch.Run(context.Background(), testConfig(player.Clip{Color: "broken.mp4"}))
	if !errors.Is(err, playback.ErrLoadFailure) {
		t.Errorf("expected ErrLoadFailure, got %v", err)
	}
}

func TestOrchestrator_Run_StartTimeout(t *testing.T) {
	h := newHarness(50)
	h.setup = func(e *mocks.Engine) { e.ManualReady = true }
	cfg := testConfig(player.Clip{Color: "slow.mp4"})
	cfg.StartTimeout = 100 * time.Millisecond

	result, err := h.orch.Run(context.Background(), cfg)
	if !errors.Is(err, ErrStartTimeout) {
		t.Errorf("expected ErrStartTimeout, got %v", err)
	}
	if result.Started {
		t.Error("expected playback not to start")
	}
}

func TestOrchestrator_Run_MaxDuration(t *testing.T) {
	h := newHarness(300)
	cfg := testConfig(player.Clip{Color: "a.mp4"})
	cfg.Loop = true
	cfg.Player.LoopMaxCount = playback.LoopForever
	cfg.MaxDuration = 700 * time.Millisecond

	result, err := h.orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Finished {
		t.Error("expected an endless loop not to finish")
	}
	if result.Elapsed < cfg.MaxDuration || result.Elapsed > cfg.MaxDuration+tickInterval {
		t.Errorf("expected to stop right after %s, elapsed %s", cfg.MaxDuration, result.Elapsed)
	}
	if result.LoopCount < 1 {
		t.Errorf("expected at least one wrap, got loop count %d", result.LoopCount)
	}
}

func TestOrchestrator_Run_DriverStops(t *testing.T) {
	h := newHarness(20)
	result, err := h.orch.Run(context.Background(), testConfig(player.Clip{Color: "a.mp4"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Finished || result.Interrupted {
		t.Errorf("expected neither finished nor interrupted, got %+v", result)
	}
	if result.Ticks != 20 {
		t.Errorf("expected 20 ticks, got %d", result.Ticks)
	}
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	h := newHarness(1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := h.orch.Run(ctx, testConfig(player.Clip{Color: "a.mp4"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Interrupted {
		t.Error("expected session to be marked interrupted")
	}
}

func TestOrchestrator_Run_NoClips(t *testing.T) {
	h := newHarness(10)
	if _, err := h.orch.Run(context.Background(), testConfig()); !errors.Is(err, player.ErrNoClips) {
		t.Errorf("expected ErrNoClips, got %v", err)
	}
}

func TestOrchestrator_Run_SnapshotResize(t *testing.T) {
	h := newHarness(200)
	var widths []int
	var mu sync.Mutex
	h.renderer.ResizeImageFunc = func(img image.Image, width, height int) image.Image {
		mu.Lock()
		widths = append(widths, width)
		mu.Unlock()
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}
	cfg := testConfig(player.Clip{Color: "a.mp4"})
	cfg.SnapshotEvery = 2
	cfg.SnapshotWidth = 2

	result, err := h.orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Snapshots != 3 {
		t.Errorf("expected snapshots of frames 1, 3 and 5, got %d", result.Snapshots)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, w := range widths {
		if w != 2 {
			t.Errorf("expected resize to width 2, got %d", w)
		}
	}
}

func TestOrchestrator_Run_DisabledSink(t *testing.T) {
	h := newHarness(200)
	h.orch.sink = mocks.NewFrameSink(false)
	cfg := testConfig(player.Clip{Color: "a.mp4"})
	cfg.SnapshotEvery = 1

	result, err := h.orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Snapshots != 0 {
		t.Errorf("expected no snapshots with a disabled sink, got %d", result.Snapshots)
	}
}
