package mocks

import (
	"image"
	"sync"

	"github.com/user/alphaplay/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	ComposeFunc     func(color, alpha image.Image) image.Image
	AnnotateFunc    func(img image.Image, label string) image.Image
	ResizeImageFunc func(img image.Image, width, height int) image.Image
	EncodeImageFunc func(img image.Image, format ports.ImageFormat) ([]byte, error)

	mu       sync.Mutex
	composed int
}

func (m *Renderer) Compose(color, alpha image.Image) image.Image {
	m.mu.Lock()
	m.composed++
	m.mu.Unlock()
	if m.ComposeFunc != nil {
		return m.ComposeFunc(color, alpha)
	}
	return color
}

func (m *Renderer) Annotate(img image.Image, label string) image.Image {
	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(img, label)
	}
	return img
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format)
	}
	return []byte{}, nil
}

// ComposeCount returns how many times Compose was called.
func (m *Renderer) ComposeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.composed
}

var _ ports.Renderer = (*Renderer)(nil)
