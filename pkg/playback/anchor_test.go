package playback

import (
	"errors"
	"testing"
	"time"
)

func TestMapper_UnresolvableWithoutAnchor(t *testing.T) {
	m := NewMapper(3 * time.Second)
	if _, err := m.Map(10 * time.Second); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("expected ErrUnresolvable, got %v", err)
	}
}

func TestMapper_UnresolvableBeforeAnchor(t *testing.T) {
	m := NewMapper(3 * time.Second)
	m.Anchor(SyncAnchor{Rate: 1, ItemTime: 0, HostTime: 10 * time.Second})
	if _, err := m.Map(9 * time.Second); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("expected ErrUnresolvable, got %v", err)
	}
}

func TestMapper_Map(t *testing.T) {
	m := NewMapper(3 * time.Second)
	m.Anchor(SyncAnchor{Rate: 2, ItemTime: 500 * time.Millisecond, HostTime: 10 * time.Second})

	got, err := m.Map(10*time.Second + 250*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ItemTime != time.Second || got.Complete {
		t.Errorf("expected 1s incomplete, got %+v", got)
	}
}

func TestMapper_ClampsAtClipEnd(t *testing.T) {
	m := NewMapper(3 * time.Second)
	m.Anchor(SyncAnchor{Rate: 1, HostTime: 10 * time.Second})

	got, err := m.Map(20 * time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ItemTime != 3*time.Second {
		t.Errorf("expected clamp to 3s, got %s", got.ItemTime)
	}
	if !got.Complete {
		t.Error("expected complete past clip end")
	}
}

func TestMapper_Clear(t *testing.T) {
	m := NewMapper(3 * time.Second)
	m.Anchor(SyncAnchor{Rate: 1, HostTime: 10 * time.Second})
	m.Clear()
	if _, ok := m.Current(); ok {
		t.Error("expected no anchor after Clear")
	}
	if _, err := m.Map(11 * time.Second); !errors.Is(err, ErrUnresolvable) {
		t.Errorf("expected ErrUnresolvable, got %v", err)
	}
}

func TestSyncAnchor_RoundTrip(t *testing.T) {
	for _, rate := range []float64{0.5, 1, 1.5, 2} {
		a := SyncAnchor{Rate: rate, ItemTime: 200 * time.Millisecond, HostTime: 10 * time.Second}
		for _, elapsed := range []time.Duration{0, time.Millisecond, 123456789, 2 * time.Second} {
			host := a.HostTime + elapsed
			item := a.ItemTimeAt(host)
			back, ok := a.HostTimeAt(item)
			if !ok {
				t.Fatalf("rate %.1f: expected host time", rate)
			}
			if d := back - host; d < -2 || d > 2 {
				t.Errorf("rate %.1f, elapsed %s: round trip off by %s", rate, elapsed, d)
			}
		}
	}
}

func TestSyncAnchor_PausedHasNoHostTime(t *testing.T) {
	a := SyncAnchor{Rate: 0, ItemTime: time.Second, HostTime: 10 * time.Second}
	if got := a.ItemTimeAt(20 * time.Second); got != time.Second {
		t.Errorf("expected paused anchor to hold 1s, got %s", got)
	}
	if _, ok := a.HostTimeAt(2 * time.Second); ok {
		t.Error("expected no host time for a paused anchor")
	}
}
