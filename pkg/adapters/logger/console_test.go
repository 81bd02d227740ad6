package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/user/alphaplay/pkg/mocks"
	"github.com/user/alphaplay/pkg/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriter(ports.LevelInfo, &out, &errOut)

	l.Debug("Loading asset")
	l.Info("Playback finished")
	l.Warn("Asset failed to load")

	if strings.Contains(out.String(), "Loading asset") {
		t.Error("expected debug message to be filtered")
	}
	if !strings.Contains(out.String(), "Playback finished") {
		t.Errorf("expected info on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Asset failed to load") {
		t.Errorf("expected warning on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var out bytes.Buffer
	l := NewWriter(ports.LevelDebug, &out, &out).WithComponent("output:abc")
	l.Info("Prerolling entry %d", 2)

	if got := strings.TrimSpace(out.String()); got != "[output:abc] Prerolling entry 2" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	l := NewWriter(ports.LevelQuiet, &out, &out)
	l.Error("Failed to start playback: %v", "boom")
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestConsoleLogger_WithClock(t *testing.T) {
	var out bytes.Buffer
	clock := mocks.NewClock(1500 * time.Millisecond)
	l := NewWriter(ports.LevelInfo, &out, &out).WithClock(clock)

	l.WithComponent("playlist").Info("Playback finished")

	want := "    1.500 [playlist] Playback finished"
	if got := strings.TrimRight(out.String(), "\n"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatHostTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "    0.000"},
		{16667 * time.Microsecond, "    0.017"},
		{90 * time.Second, "   90.000"},
	}
	for _, tt := range tests {
		if got := formatHostTime(tt.d); got != tt.want {
			t.Errorf("formatHostTime(%s): expected %q, got %q", tt.d, tt.want, got)
		}
	}
}
