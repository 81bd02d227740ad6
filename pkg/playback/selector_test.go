package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/user/alphaplay/pkg/mocks"
)

func testFrame(n int, fd time.Duration) *Frame {
	pts := FrameTime(n, fd)
	return &Frame{Color: mocks.NewBuffer(pts), Number: n, PresentationTime: pts}
}

func TestFrameNumber_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		itemTime time.Duration
		fd       time.Duration
		want     int
	}{
		{"inside first frame", 100 * time.Millisecond, 330 * time.Millisecond, 0},
		{"exact boundary belongs to later frame", 330 * time.Millisecond, 330 * time.Millisecond, 1},
		{"past midpoint of second frame", 600 * time.Millisecond, 330 * time.Millisecond, 2},
		{"zero", 0, 330 * time.Millisecond, 0},
		{"negative", -5 * time.Millisecond, 330 * time.Millisecond, 0},
		{"zero frame duration", time.Second, 0, 0},
		{"clip end at 30fps", time.Second, time.Second / 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameNumber(tt.itemTime, tt.fd); got != tt.want {
				t.Errorf("FrameNumber(%s, %s) = %d, want %d", tt.itemTime, tt.fd, got, tt.want)
			}
		})
	}
}

func TestFrameNumber_AgreesWithFrameTime(t *testing.T) {
	fd := time.Second / 30
	for n := 0; n < 300; n++ {
		if got := FrameNumber(FrameTime(n, fd), fd); got != n {
			t.Fatalf("FrameNumber(FrameTime(%d)) = %d", n, got)
		}
	}
}

func TestSelector_ExactMatch(t *testing.T) {
	fd := 100 * time.Millisecond
	s := NewSelector(fd, 29)
	prev, cur := testFrame(4, fd), testFrame(5, fd)

	f, err := s.Select(400*time.Millisecond, prev, cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != prev {
		t.Errorf("expected previous frame, got %s", f)
	}

	f, err = s.Select(500*time.Millisecond, prev, cur)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != cur {
		t.Errorf("expected current frame, got %s", f)
	}
}

func TestSelector_SingleFrameTolerance(t *testing.T) {
	fd := 100 * time.Millisecond
	s := NewSelector(fd, 29)

	f, err := s.Select(400*time.Millisecond, nil, testFrame(5, fd))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Number != 5 {
		t.Errorf("expected frame 5 within tolerance, got %d", f.Number)
	}

	s.Reset()
	_, err = s.Select(300*time.Millisecond, testFrame(4, fd), testFrame(5, fd))
	if !errors.Is(err, ErrFrameNotYetAvailable) {
		t.Errorf("expected ErrFrameNotYetAvailable two frames behind, got %v", err)
	}

	_, err = s.Select(900*time.Millisecond, testFrame(4, fd), testFrame(5, fd))
	if !errors.Is(err, ErrFrameNotYetAvailable) {
		t.Errorf("expected ErrFrameNotYetAvailable for a frame not produced yet, got %v", err)
	}
}

func TestSelector_NeverGoesBackwards(t *testing.T) {
	fd := 100 * time.Millisecond
	s := NewSelector(fd, 29)
	prev, cur := testFrame(4, fd), testFrame(5, fd)

	if _, err := s.Select(500*time.Millisecond, prev, cur); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Select(400*time.Millisecond, prev, cur); !errors.Is(err, ErrFrameNotYetAvailable) {
		t.Errorf("expected older frame to be refused, got %v", err)
	}
	if s.LastReturned() != 5 {
		t.Errorf("expected last returned 5, got %d", s.LastReturned())
	}

	s.Reset()
	f, err := s.Select(400*time.Millisecond, prev, cur)
	if err != nil || f.Number != 4 {
		t.Errorf("expected frame 4 after reset, got %v, %v", f, err)
	}
}

func TestSelector_TargetClampsToLastFrame(t *testing.T) {
	s := NewSelector(100*time.Millisecond, 29)
	if got := s.Target(10 * time.Second); got != 29 {
		t.Errorf("expected target 29, got %d", got)
	}
}
