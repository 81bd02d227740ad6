package summarizer

import (
	"fmt"

	"github.com/user/alphaplay/pkg/ports"
)

// Formatter renders a Summary as text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function serve as a Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string { return f(summary) }

// Writer renders summaries and stores them through a FileSystem.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// Bytes renders the summary. Sinks store the result next to snapshots.
func (w *Writer) Bytes(summary *Summary) []byte {
	return []byte(w.formatter.Format(summary))
}

// Write renders the summary to path.
func (w *Writer) Write(path string, summary *Summary) error {
	if err := w.fs.WriteFile(path, w.Bytes(summary)); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
