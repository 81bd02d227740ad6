// Package filesink provides a file-based frame sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/alphaplay/pkg/ports"
)

// Sink saves snapshots and session reports under a base directory:
//
//	<base>/frames/frame-0001.png
//	<base>/timeline.json
//	<base>/summary.md
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
	format   ports.ImageFormat
}

// New creates a new Sink writing PNG snapshots.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
		format:   ports.FormatPNG,
	}
}

// WithFormat sets the snapshot encoding.
func (s *Sink) WithFormat(format ports.ImageFormat) *Sink {
	s.format = format
	return s
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFrame encodes and saves a snapshot.
func (s *Sink) SaveFrame(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, s.format)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	ext := "png"
	if s.format == ports.FormatJPEG {
		ext = "jpg"
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.%s", index, ext))
	return s.fs.WriteFile(path, data)
}

// SaveTimelineJSON saves the presentation timeline.
func (s *Sink) SaveTimelineJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "timeline.json"), data)
}

// SaveSummary saves the session summary.
func (s *Sink) SaveSummary(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "summary.md"), data)
}

// Ensure Sink implements ports.FrameSink
var _ ports.FrameSink = (*Sink)(nil)
