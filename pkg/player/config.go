// Package player provides a high-level API for building clip playlists.
package player

import (
	"time"

	"github.com/user/alphaplay/pkg/playback"
)

// Config represents the playback settings shared by every clip of a player.
type Config struct {
	Rate            float64       // Playback rate (1.0 = normal speed)
	LoopMaxCount    int           // Extra passes for looped playlists (playback.LoopForever = no limit)
	StartLead       time.Duration // Delay between everyone ready and the shared start tick
	LastSecondDelta time.Duration // Warning window before each clip's final frame
	DesyncPulls     int           // Pulls a color/alpha mismatch may last before a warning
	InlineProduce   bool          // Produce on the presentation goroutine instead of a worker
}

// DefaultConfig returns the default playback settings.
func DefaultConfig() Config {
	return Config{
		Rate:            1.0,
		LoopMaxCount:    playback.LoopForever,
		StartLead:       playback.DefaultStartLead,
		LastSecondDelta: playback.DefaultLastSecondDelta,
		DesyncPulls:     playback.DefaultDesyncPulls,
	}
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: DefaultConfig()}
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	// Only forward playback is supported
	if cfg.Rate <= 0 {
		cfg.Rate = 1.0
	}

	if cfg.LoopMaxCount < 0 {
		cfg.LoopMaxCount = playback.LoopForever
	}

	if cfg.StartLead < 0 {
		cfg.StartLead = 0
	}

	if cfg.DesyncPulls < 1 {
		cfg.DesyncPulls = 1
	}

	return cfg
}

// WithRate sets the playback rate.
func (b *ConfigBuilder) WithRate(rate float64) *ConfigBuilder {
	b.config.Rate = rate
	return b
}

// WithLoopMaxCount sets how many extra passes a looped playlist makes.
func (b *ConfigBuilder) WithLoopMaxCount(n int) *ConfigBuilder {
	b.config.LoopMaxCount = n
	return b
}

// WithStartLead sets the delay before a synchronized start.
func (b *ConfigBuilder) WithStartLead(d time.Duration) *ConfigBuilder {
	b.config.StartLead = d
	return b
}

// WithLastSecondDelta sets the last-second warning window.
func (b *ConfigBuilder) WithLastSecondDelta(d time.Duration) *ConfigBuilder {
	b.config.LastSecondDelta = d
	return b
}

// WithDesyncPulls sets the desync warning threshold.
func (b *ConfigBuilder) WithDesyncPulls(n int) *ConfigBuilder {
	b.config.DesyncPulls = n
	return b
}

// WithInlineProduce runs produce steps on the presentation goroutine.
func (b *ConfigBuilder) WithInlineProduce(inline bool) *ConfigBuilder {
	b.config.InlineProduce = inline
	return b
}
