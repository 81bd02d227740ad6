package ports

import (
	"image"
)

// Renderer composes decoded buffers into images for snapshots.
// It is a debug aid, not a display pipeline.
type Renderer interface {
	// Compose draws color and applies alpha as a luminance matte.
	// A nil alpha produces an opaque copy of color.
	Compose(color, alpha image.Image) image.Image

	// Annotate returns a copy of img with label drawn in a caption bar.
	Annotate(img image.Image, label string) image.Image

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat) ([]byte, error)
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
)
