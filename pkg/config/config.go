// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/user/alphaplay/pkg/orchestrator"
	"github.com/user/alphaplay/pkg/playback"
	"github.com/user/alphaplay/pkg/player"
	"github.com/user/alphaplay/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Engine names accepted by the engine setting.
const (
	EngineMP4     = "mp4"
	EnginePattern = "pattern"
)

// Config represents the full configuration for alphaplay.
type Config struct {
	// Input
	Clips     []ClipConfig  `yaml:"clips"`
	AssetRoot string        `yaml:"asset_root"`
	Engine    string        `yaml:"engine"`
	Pattern   PatternConfig `yaml:"pattern"`

	// Playback
	Loop          bool    `yaml:"loop"`
	LoopMaxCount  int     `yaml:"loop_max_count"`
	Rate          float64 `yaml:"rate"`
	Instances     int     `yaml:"instances"`
	StartLeadMs   int     `yaml:"start_lead_ms"`
	LastSecondMs  int     `yaml:"last_second_ms"`
	DesyncPulls   int     `yaml:"desync_pulls"`
	InlineProduce bool    `yaml:"inline_produce"`

	// Display
	RefreshHz int `yaml:"refresh_hz"`
	LatencyMs int `yaml:"latency_ms"`

	// Session
	DurationMs     int `yaml:"duration_ms"`
	StartTimeoutMs int `yaml:"start_timeout_ms"`

	// Snapshots and reports
	SnapshotEvery  int    `yaml:"snapshot_every"`
	SnapshotWidth  int    `yaml:"snapshot_width"`
	SnapshotFormat string `yaml:"snapshot_format"`
	SummaryPath    string `yaml:"summary_path"`

	// Logging and debug
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// ClipConfig names a color asset and its optional alpha matte.
type ClipConfig struct {
	Color string `yaml:"color"`
	Alpha string `yaml:"alpha"`
}

// PatternConfig describes the synthetic clips of the pattern engine.
type PatternConfig struct {
	FPS            float64 `yaml:"fps"`
	DurationMs     int     `yaml:"duration_ms"`
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	ReadyDelayMs   int     `yaml:"ready_delay_ms"`
	PrerollDelayMs int     `yaml:"preroll_delay_ms"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Input
		Engine: EngineMP4,
		Pattern: PatternConfig{
			FPS:        30,
			DurationMs: 2000,
			Width:      320,
			Height:     180,
		},

		// Playback
		LoopMaxCount: playback.LoopForever,
		Rate:         1.0,
		Instances:    1,
		StartLeadMs:  int(playback.DefaultStartLead / time.Millisecond),
		LastSecondMs: int(playback.DefaultLastSecondDelta / time.Millisecond),
		DesyncPulls:  playback.DefaultDesyncPulls,

		// Display
		RefreshHz: 60,

		// Session
		StartTimeoutMs: 10000,

		// Snapshots and reports
		SnapshotFormat: "png",

		// Logging and debug
		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports the first setting that cannot be played.
func (c Config) Validate() error {
	if len(c.Clips) == 0 {
		return fmt.Errorf("no clips configured")
	}
	for i, clip := range c.Clips {
		if clip.Color == "" {
			return fmt.Errorf("clip %d: color asset is required", i)
		}
	}
	switch c.Engine {
	case EngineMP4, EnginePattern:
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, EngineMP4, EnginePattern)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %g", c.Rate)
	}
	if c.RefreshHz <= 0 {
		return fmt.Errorf("refresh_hz must be positive, got %d", c.RefreshHz)
	}
	if _, err := ParseImageFormat(c.SnapshotFormat); err != nil {
		return err
	}
	if _, err := ports.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseImageFormat maps a snapshot format name to ports.ImageFormat.
func ParseImageFormat(name string) (ports.ImageFormat, error) {
	switch strings.ToLower(name) {
	case "", "png":
		return ports.FormatPNG, nil
	case "jpg", "jpeg":
		return ports.FormatJPEG, nil
	default:
		return ports.FormatPNG, fmt.Errorf("unknown snapshot format %q", name)
	}
}

// PlayerClips converts the clip list to player clips.
func (c Config) PlayerClips() []player.Clip {
	clips := make([]player.Clip, len(c.Clips))
	for i, clip := range c.Clips {
		clips[i] = player.Clip{Color: clip.Color, Alpha: clip.Alpha}
	}
	return clips
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	playerConfig := player.NewConfigBuilder().
		WithRate(c.Rate).
		WithLoopMaxCount(c.LoopMaxCount).
		WithStartLead(ms(c.StartLeadMs)).
		WithLastSecondDelta(ms(c.LastSecondMs)).
		WithDesyncPulls(c.DesyncPulls).
		WithInlineProduce(c.InlineProduce).
		Build()

	return orchestrator.Config{
		Clips:     c.PlayerClips(),
		Loop:      c.Loop,
		Instances: c.Instances,
		Player:    playerConfig,

		MaxDuration:  ms(c.DurationMs),
		StartTimeout: ms(c.StartTimeoutMs),

		SnapshotEvery: c.SnapshotEvery,
		SnapshotWidth: c.SnapshotWidth,
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
