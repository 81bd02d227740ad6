package mp4engine

import (
	"testing"
	"time"
)

func TestProbe_Fragmented(t *testing.T) {
	track, err := Probe(buildFragmented(t, 10, 2500, 100))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if track.Codec != CodecAV1 {
		t.Errorf("expected codec av1, got %s", track.Codec)
	}
	if !track.Fragmented {
		t.Error("expected fragmented track")
	}
	if track.Width != 64 || track.Height != 48 {
		t.Errorf("expected 64x48, got %dx%d", track.Width, track.Height)
	}
	if len(track.Samples) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(track.Samples))
	}
	if track.FrameDuration() != 40*time.Millisecond {
		t.Errorf("expected frame duration 40ms, got %s", track.FrameDuration())
	}
	if track.Duration() != 400*time.Millisecond {
		t.Errorf("expected duration 400ms, got %s", track.Duration())
	}
	if track.SyncCount() != 2 {
		t.Errorf("expected 2 sync samples, got %d", track.SyncCount())
	}

	s := track.Samples[3]
	if s.PresentationTime != 120*time.Millisecond {
		t.Errorf("expected sample 3 at 120ms, got %s", s.PresentationTime)
	}
	if len(s.Data) != 4 || s.Data[0] != 3 {
		t.Errorf("unexpected sample 3 payload %v", s.Data)
	}
}

func TestProbe_Invalid(t *testing.T) {
	if _, err := Probe([]byte("not an mp4 file")); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestTrack_SampleAt(t *testing.T) {
	track, err := Probe(buildFragmented(t, 10, 2500, 100))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	tests := []struct {
		itemTime time.Duration
		expected int
	}{
		{-time.Millisecond, 0},
		{0, 0},
		{39 * time.Millisecond, 0},
		{40 * time.Millisecond, 1},
		{399 * time.Millisecond, 9},
		{time.Second, 9},
	}

	for _, tt := range tests {
		if got := track.SampleAt(tt.itemTime); got != tt.expected {
			t.Errorf("SampleAt(%s) = %d, expected %d", tt.itemTime, got, tt.expected)
		}
	}
}

func TestTrack_SyncBefore(t *testing.T) {
	track, err := Probe(buildFragmented(t, 10, 2500, 100))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	tests := map[int]int{0: 0, 4: 0, 5: 5, 9: 5}
	for index, expected := range tests {
		if got := track.SyncBefore(index); got != expected {
			t.Errorf("SyncBefore(%d) = %d, expected %d", index, got, expected)
		}
	}
}
