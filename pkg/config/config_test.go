package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/alphaplay/pkg/playback"
	"github.com/user/alphaplay/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Engine != EngineMP4 {
		t.Errorf("expected engine %s, got %s", EngineMP4, cfg.Engine)
	}
	if cfg.Rate != 1.0 {
		t.Errorf("expected rate 1.0, got %f", cfg.Rate)
	}
	if cfg.LoopMaxCount != playback.LoopForever {
		t.Errorf("expected endless looping by default, got %d", cfg.LoopMaxCount)
	}
	if cfg.StartLeadMs != 50 {
		t.Errorf("expected start lead 50ms, got %d", cfg.StartLeadMs)
	}
	if cfg.RefreshHz != 60 {
		t.Errorf("expected 60 Hz, got %d", cfg.RefreshHz)
	}
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
clips:
  - color: intro.mp4
    alpha: intro-alpha.mp4
  - color: main.mp4
    alpha: main-alpha.mp4
asset_root: /media
loop: true
loop_max_count: 2
rate: 0.5
refresh_hz: 120
pattern:
  fps: 24
`
	path := filepath.Join(t.TempDir(), "alphaplay.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if len(cfg.Clips) != 2 || cfg.Clips[1].Alpha != "main-alpha.mp4" {
		t.Errorf("unexpected clips: %+v", cfg.Clips)
	}
	if cfg.AssetRoot != "/media" || !cfg.Loop || cfg.LoopMaxCount != 2 {
		t.Errorf("unexpected playback settings: %+v", cfg)
	}
	if cfg.Rate != 0.5 || cfg.RefreshHz != 120 {
		t.Errorf("expected rate 0.5 at 120 Hz, got %f at %d Hz", cfg.Rate, cfg.RefreshHz)
	}

	// Unset fields keep their defaults
	if cfg.Pattern.FPS != 24 || cfg.Pattern.Width != 320 {
		t.Errorf("expected pattern 24 fps at default width, got %+v", cfg.Pattern)
	}
	if cfg.Engine != EngineMP4 {
		t.Errorf("expected default engine, got %s", cfg.Engine)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("clips: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Clips = []ClipConfig{{Color: "a.mp4"}}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"pattern engine", func(c *Config) { c.Engine = EnginePattern }, false},
		{"no clips", func(c *Config) { c.Clips = nil }, true},
		{"missing color", func(c *Config) { c.Clips = []ClipConfig{{Alpha: "a.mp4"}} }, true},
		{"unknown engine", func(c *Config) { c.Engine = "ffmpeg" }, true},
		{"zero rate", func(c *Config) { c.Rate = 0 }, true},
		{"negative rate", func(c *Config) { c.Rate = -1 }, true},
		{"zero refresh", func(c *Config) { c.RefreshHz = 0 }, true},
		{"bad format", func(c *Config) { c.SnapshotFormat = "gif" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseImageFormat(t *testing.T) {
	tests := []struct {
		name string
		want ports.ImageFormat
	}{
		{"", ports.FormatPNG},
		{"png", ports.FormatPNG},
		{"JPEG", ports.FormatJPEG},
		{"jpg", ports.FormatJPEG},
	}
	for _, tt := range tests {
		got, err := ParseImageFormat(tt.name)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Clips = []ClipConfig{{Color: "a.mp4", Alpha: "a-alpha.mp4"}}
	cfg.Loop = true
	cfg.LoopMaxCount = 3
	cfg.Rate = 2
	cfg.Instances = 4
	cfg.StartLeadMs = 100
	cfg.DesyncPulls = 0
	cfg.DurationMs = 5000
	cfg.SnapshotEvery = 10

	oc := cfg.ToOrchestratorConfig()

	if len(oc.Clips) != 1 || !oc.Clips[0].HasAlpha() {
		t.Errorf("expected one alpha clip, got %+v", oc.Clips)
	}
	if !oc.Loop || oc.Instances != 4 {
		t.Errorf("expected 4 looping instances, got loop=%v instances=%d", oc.Loop, oc.Instances)
	}
	if oc.Player.Rate != 2 || oc.Player.LoopMaxCount != 3 {
		t.Errorf("unexpected player config: %+v", oc.Player)
	}
	if oc.Player.StartLead != 100*time.Millisecond {
		t.Errorf("expected start lead 100ms, got %s", oc.Player.StartLead)
	}
	if oc.Player.DesyncPulls != 1 {
		t.Errorf("expected desync pulls clamped to 1, got %d", oc.Player.DesyncPulls)
	}
	if oc.MaxDuration != 5*time.Second || oc.StartTimeout != 10*time.Second {
		t.Errorf("unexpected durations: max %s start %s", oc.MaxDuration, oc.StartTimeout)
	}
	if oc.SnapshotEvery != 10 {
		t.Errorf("expected snapshot every 10, got %d", oc.SnapshotEvery)
	}
}
