package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/alphaplay/pkg/mocks"
	"github.com/user/alphaplay/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})
	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat) ([]byte, error) {
			if format != ports.FormatPNG {
				t.Errorf("expected PNG, got %d", format)
			}
			return []byte("png"), nil
		},
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveFrame(7, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "frames", "frame-0007.png")
	saved, ok := fs.File(expectedPath)
	if !ok {
		t.Fatalf("expected file at %s", expectedPath)
	}
	if string(saved) != "png" {
		t.Errorf("unexpected content %q", saved)
	}
}

func TestSink_SaveFrameJPEG(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{}).WithFormat(ports.FormatJPEG)

	if err := sink.SaveFrame(1, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}
	if _, ok := fs.File(filepath.Join(testBaseDir, "frames", "frame-0001.jpg")); !ok {
		t.Error("expected .jpg snapshot")
	}
}

func TestSink_SaveFrameEncodeError(t *testing.T) {
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(image.Image, ports.ImageFormat) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}
	sink := New(testBaseDir, mocks.NewFileSystem(), renderer)
	if err := sink.SaveFrame(1, image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected encode error")
	}
}

func TestSink_SaveReports(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	if err := sink.SaveTimelineJSON([]byte(`[]`)); err != nil {
		t.Fatalf("SaveTimelineJSON failed: %v", err)
	}
	if err := sink.SaveSummary([]byte("# Summary")); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	if data, _ := fs.File(filepath.Join(testBaseDir, "timeline.json")); string(data) != `[]` {
		t.Errorf("unexpected timeline %q", data)
	}
	if data, _ := fs.File(filepath.Join(testBaseDir, "summary.md")); string(data) != "# Summary" {
		t.Errorf("unexpected summary %q", data)
	}
}
