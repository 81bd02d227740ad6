// Package main provides the CLI entry point for alphaplay.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/alphaplay/pkg/adapters/displaylink"
	"github.com/user/alphaplay/pkg/adapters/filesink"
	"github.com/user/alphaplay/pkg/adapters/ggrenderer"
	"github.com/user/alphaplay/pkg/adapters/hostclock"
	"github.com/user/alphaplay/pkg/adapters/logger"
	"github.com/user/alphaplay/pkg/adapters/mp4engine"
	"github.com/user/alphaplay/pkg/adapters/nullsink"
	"github.com/user/alphaplay/pkg/adapters/osfilesystem"
	"github.com/user/alphaplay/pkg/adapters/patternengine"
	"github.com/user/alphaplay/pkg/config"
	"github.com/user/alphaplay/pkg/orchestrator"
	"github.com/user/alphaplay/pkg/player"
	"github.com/user/alphaplay/pkg/ports"
	"github.com/user/alphaplay/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Play    PlayCmd    `cmd:"" help:"Play clips in sync against the display refresh."`
	Probe   ProbeCmd   `cmd:"" help:"Print the video track timing of MP4 files."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// PlayCmd defines the play subcommand.
type PlayCmd struct {
	// Clips as color.mp4 or color.mp4,alpha.mp4
	Clips []string `arg:"" optional:"" sep:"none" help:"Clips to play, each as COLOR or COLOR,ALPHA."`

	// Config file (flags override it)
	Config string `short:"c" type:"existingfile" help:"YAML configuration file."`

	// Input
	AssetRoot *string `help:"Directory clip paths are relative to."`
	Engine    string  `short:"e" help:"Decode engine (mp4 or pattern)."`

	// Playback
	Loop      bool     `short:"L" help:"Loop the playlist."`
	LoopMax   *int     `help:"Extra passes when looping (-1 = forever)."`
	Rate      *float64 `short:"r" help:"Playback rate (1.0 = normal speed)."`
	Instances *int     `short:"n" help:"Number of players started in sync."`
	StartLead *int     `help:"Delay between all players ready and the shared start in milliseconds."`
	Desync    *int     `help:"Pulls a color/alpha mismatch may last before a warning."`
	Inline    bool     `help:"Produce frames on the presentation loop instead of a worker."`

	// Display
	RefreshHz *int `help:"Display refresh rate in Hz."`
	LatencyMs *int `help:"Display latency added to each tick's presentation time in milliseconds."`

	// Session
	DurationMs *int `short:"t" help:"Stop after this many milliseconds of playback (0 = play to the end)."`

	// Output
	Summary       *string `short:"s" help:"Write a Markdown summary to this path."`
	Snapshots     *int    `help:"Save every Nth new frame as an image (requires --debug)."`
	SnapshotWidth *int    `help:"Resize snapshots to this width."`

	// Debug options
	Debug    bool    `short:"d" help:"Enable debug output."`
	DebugDir *string `help:"Directory for debug output."`

	// Logging options
	LogLevel *string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool    `short:"Q" help:"Suppress all log output."`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	Files []string `arg:"" type:"existingfile" help:"MP4 files to inspect."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("alphaplay"),
		kong.Description(l10n.T("Frame-accurate synchronized playback of color and alpha video clips.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the play command.
func (cmd *PlayCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	clock := hostclock.New()

	// Create logger
	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		level, _ := ports.ParseLogLevel(cfg.LogLevel)
		log = logger.NewConsole(level).WithClock(clock)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Interrupted, shutting down...")
		cancel()
	}()

	// Create adapters
	fs := osfilesystem.New()
	assets := osfilesystem.NewRooted(cfg.AssetRoot)
	renderer := ggrenderer.New()
	driver := displaylink.New(clock, cfg.RefreshHz).
		WithLatency(time.Duration(cfg.LatencyMs) * time.Millisecond)

	format, _ := config.ParseImageFormat(cfg.SnapshotFormat)

	// Create debug sink
	var sink ports.FrameSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer).WithFormat(format)
	} else {
		sink = nullsink.New()
	}

	orch := orchestrator.New(
		engineFactory(cfg, assets),
		clock,
		driver,
		renderer,
		sink,
		log.WithComponent("session"),
	)
	orchConfig := cfg.ToOrchestratorConfig()

	log.Info("Playing %d clips with the %s engine at %d Hz", len(cfg.Clips), cfg.Engine, cfg.RefreshHz)

	result, runErr := orch.Run(ctx, orchConfig)
	if runErr != nil && !result.Started {
		return runErr
	}

	summary := buildSummary(cfg, result)
	writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(func(s string) string { return l10n.T(s) }),
		summarizer.WithVersion(version),
	), fs)
	if sink.Enabled() {
		if err := sink.SaveSummary(writer.Bytes(summary)); err != nil {
			log.Warn("Failed to save summary: %v", err)
		}
	}
	if cfg.SummaryPath != "" {
		if err := writer.Write(cfg.SummaryPath, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info("Summary saved to %s", cfg.SummaryPath)
	}

	if runErr != nil {
		return runErr
	}
	if result.SkippedSnapshots > 0 {
		log.Warn("Skipped %d snapshots of frames without pixels", result.SkippedSnapshots)
	}
	return nil
}

// buildConfig loads the config file, if any, and applies CLI overrides.
func (cmd *PlayCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if len(cmd.Clips) > 0 {
		cfg.Clips = cfg.Clips[:0]
		for _, arg := range cmd.Clips {
			cfg.Clips = append(cfg.Clips, parseClip(arg))
		}
	}

	// Apply overrides
	if cmd.AssetRoot != nil {
		cfg.AssetRoot = *cmd.AssetRoot
	}
	if cmd.Engine != "" {
		cfg.Engine = cmd.Engine
	}
	if cmd.Loop {
		cfg.Loop = true
	}
	if cmd.LoopMax != nil {
		cfg.LoopMaxCount = *cmd.LoopMax
	}
	if cmd.Rate != nil {
		cfg.Rate = *cmd.Rate
	}
	if cmd.Instances != nil {
		cfg.Instances = *cmd.Instances
	}
	if cmd.StartLead != nil {
		cfg.StartLeadMs = *cmd.StartLead
	}
	if cmd.Desync != nil {
		cfg.DesyncPulls = *cmd.Desync
	}
	if cmd.Inline {
		cfg.InlineProduce = true
	}
	if cmd.RefreshHz != nil {
		cfg.RefreshHz = *cmd.RefreshHz
	}
	if cmd.LatencyMs != nil {
		cfg.LatencyMs = *cmd.LatencyMs
	}
	if cmd.DurationMs != nil {
		cfg.DurationMs = *cmd.DurationMs
	}
	if cmd.Summary != nil {
		cfg.SummaryPath = *cmd.Summary
	}
	if cmd.Snapshots != nil {
		cfg.SnapshotEvery = *cmd.Snapshots
	}
	if cmd.SnapshotWidth != nil {
		cfg.SnapshotWidth = *cmd.SnapshotWidth
	}
	if cmd.Debug {
		cfg.Debug = true
	}
	if cmd.DebugDir != nil {
		cfg.DebugDir = *cmd.DebugDir
	}
	if cmd.LogLevel != nil {
		cfg.LogLevel = *cmd.LogLevel
	}

	// Snapshots are written through the debug sink
	if cfg.Debug && cfg.SnapshotEvery == 0 {
		cfg.SnapshotEvery = 1
	}

	return cfg, nil
}

// parseClip splits "color,alpha" into a clip.
func parseClip(arg string) config.ClipConfig {
	color, alpha, _ := strings.Cut(arg, ",")
	return config.ClipConfig{Color: color, Alpha: alpha}
}

// engineFactory returns the factory that opens one decode engine per asset.
func engineFactory(cfg config.Config, fs ports.FileSystem) player.EngineFactory {
	if cfg.Engine == config.EnginePattern {
		mattes := make(map[string]bool)
		for _, clip := range cfg.Clips {
			if clip.Alpha != "" {
				mattes[clip.Alpha] = true
			}
		}
		p := cfg.Pattern
		return func(asset string) (ports.DecodeEngine, error) {
			return patternengine.New(patternengine.Config{
				Label:        filepath.Base(asset),
				FPS:          p.FPS,
				Duration:     time.Duration(p.DurationMs) * time.Millisecond,
				Width:        p.Width,
				Height:       p.Height,
				ReadyDelay:   time.Duration(p.ReadyDelayMs) * time.Millisecond,
				PrerollDelay: time.Duration(p.PrerollDelayMs) * time.Millisecond,
				Matte:        mattes[asset],
			}), nil
		}
	}

	return func(asset string) (ports.DecodeEngine, error) {
		ok, err := fs.Exists(asset)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("asset not found: %s", asset)
		}
		return mp4engine.New(fs, asset), nil
	}
}

func buildSummary(cfg config.Config, result orchestrator.RunResult) *summarizer.Summary {
	names := make([]string, len(cfg.Clips))
	for i, clip := range cfg.PlayerClips() {
		names[i] = clip.Name()
	}
	oc := cfg.ToOrchestratorConfig()
	alpha, _ := player.HasAlphaChannel(oc.Clips)

	b := summarizer.NewBuilder().
		WithSession(summarizer.SessionInfo{
			Clips:     names,
			Instances: result.Instances,
			Engine:    cfg.Engine,
			Alpha:     alpha,
		}).
		WithPlayback(summarizer.PlaybackInfo{
			StartHost:   result.StartHost,
			StartSkew:   result.StartSkew,
			Elapsed:     result.Elapsed,
			Ticks:       result.Ticks,
			FreshFrames: result.FreshFrames,
			Snapshots:   result.Snapshots,
			LoopCount:   result.LoopCount,
			Transitions: result.Transitions,
			LateStarts:  result.LateStarts,
			Finished:    result.Finished,
			Interrupted: result.Interrupted,
		}).
		WithSettings(summarizer.Settings{
			Rate:         oc.Player.Rate,
			LoopMaxCount: oc.Player.LoopMaxCount,
			RefreshHz:    cfg.RefreshHz,
			StartLead:    oc.Player.StartLead,
			DesyncPulls:  oc.Player.DesyncPulls,
		})

	for _, st := range result.Streams {
		info := summarizer.StreamInfo{
			Name:            fmt.Sprintf("%d: %s", st.Instance, st.Name),
			Produced:        st.Output.Produced,
			Duplicates:      st.Output.Duplicates,
			Stale:           st.Output.Stale,
			Overwritten:     st.Output.Overwritten,
			Selected:        st.Output.Selected,
			NotYetAvailable: st.Output.NotYetAvailable,
		}
		if st.Alpha != nil {
			info.Paired = true
			info.Agreed = st.Alpha.Agreed
			info.Mismatched = st.Alpha.Mismatched
			info.DesyncEpisodes = st.Alpha.DesyncEpisodes
		}
		b.AddStream(info)
	}
	return b.Build()
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	fs := osfilesystem.New()
	for _, path := range cmd.Files {
		data, err := fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		track, err := mp4engine.Probe(data)
		if err != nil {
			return fmt.Errorf("probe %s: %w", path, err)
		}
		layout := l10n.T("progressive")
		if track.Fragmented {
			layout = l10n.T("fragmented")
		}
		fmt.Println(path)
		fmt.Println(l10n.F("  codec:          %s (%s)", track.Codec, layout))
		fmt.Println(l10n.F("  dimensions:     %dx%d", track.Width, track.Height))
		fmt.Println(l10n.F("  timescale:      %d", track.Timescale))
		fmt.Println(l10n.F("  frames:         %d (%d sync)", len(track.Samples), track.SyncCount()))
		fmt.Println(l10n.F("  frame duration: %s", track.FrameDuration()))
		fmt.Println(l10n.F("  duration:       %s", track.Duration()))
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("alphaplay version %s", version))
	return nil
}
