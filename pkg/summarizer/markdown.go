package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as Markdown tables.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		if fn != nil {
			f.translate = fn
		}
	}
}

// WithVersion sets the version shown in the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
		version:   "dev",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Playback Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	// Results
	fmt.Fprintf(&b, "## %s\n\n", t("Results"))
	f.header(&b)
	f.row(&b, "Clips", strings.Join(s.Session.Clips, ", "))
	f.row(&b, "Instances", fmt.Sprintf("%d", s.Session.Instances))
	f.row(&b, "Status", f.status(s.Playback))
	f.row(&b, "Start Host Time", formatDuration(s.Playback.StartHost))
	if s.Session.Instances > 1 {
		f.row(&b, "Start Skew", formatDuration(s.Playback.StartSkew))
	}
	f.row(&b, "Played", formatDuration(s.Playback.Elapsed))
	f.row(&b, "Refresh Ticks", fmt.Sprintf("%d", s.Playback.Ticks))
	f.row(&b, "Frames Shown", fmt.Sprintf("%d", s.Playback.FreshFrames))
	f.row(&b, "Loop Count", fmt.Sprintf("%d", s.Playback.LoopCount))
	f.row(&b, "Transitions", fmt.Sprintf("%d", s.Playback.Transitions))
	f.row(&b, "Late Starts", fmt.Sprintf("%d", s.Playback.LateStarts))
	if s.Playback.Snapshots > 0 {
		f.row(&b, "Snapshots", fmt.Sprintf("%d", s.Playback.Snapshots))
	}
	b.WriteString("\n")

	// Settings
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	f.header(&b)
	f.row(&b, "Engine", s.Session.Engine)
	f.row(&b, "Alpha Channel", f.yesNo(s.Session.Alpha))
	f.row(&b, "Rate", fmt.Sprintf("%.2fx", s.Settings.Rate))
	f.row(&b, "Loop Max Count", f.loopMax(s.Settings.LoopMaxCount))
	f.row(&b, "Refresh Rate", fmt.Sprintf("%d Hz", s.Settings.RefreshHz))
	f.row(&b, "Start Lead", formatDuration(s.Settings.StartLead))
	f.row(&b, "Desync Threshold", fmt.Sprintf("%d", s.Settings.DesyncPulls))
	b.WriteString("\n")

	// Streams
	if len(s.Streams) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Streams"))
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			t("Stream"), t("Produced"), t("Selected"), t("Not Yet Available"), t("Stale"), t("Desync"))
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, st := range s.Streams {
			desync := "-"
			if st.Paired {
				desync = fmt.Sprintf("%d", st.DesyncEpisodes)
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %s |\n",
				st.Name, st.Produced, st.Selected, st.NotYetAvailable, st.Stale, desync)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n%s alphaplay %s\n", t("Generated by"), f.version)
	return b.String()
}

func (f *MarkdownFormatter) header(b *strings.Builder) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.translate("Item"), f.translate("Value"))
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate(label), value)
}

func (f *MarkdownFormatter) status(p PlaybackInfo) string {
	switch {
	case p.Finished:
		return f.translate("Finished")
	case p.Interrupted:
		return f.translate("Interrupted")
	default:
		return f.translate("Stopped")
	}
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

func (f *MarkdownFormatter) loopMax(n int) string {
	if n < 0 {
		return f.translate("Forever")
	}
	return fmt.Sprintf("%d", n)
}

// formatDuration renders d in milliseconds.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%d ms", d.Milliseconds())
}
