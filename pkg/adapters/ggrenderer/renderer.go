// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/user/alphaplay/pkg/ports"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 85

const captionHeight = 18

// Renderer implements ports.Renderer using the gg library.
type Renderer struct {
	quality int
}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{quality: DefaultJPEGQuality}
}

// NewWithQuality creates a Renderer encoding JPEG at quality (1-100).
func NewWithQuality(quality int) *Renderer {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Renderer{quality: quality}
}

// Compose draws color through alpha used as a luminance matte. A matte of a
// different size is scaled to the color frame first.
func (r *Renderer) Compose(colorImg, alphaImg image.Image) image.Image {
	b := colorImg.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	if alphaImg != nil {
		if err := dc.SetMask(lumaMask(alphaImg, b.Dx(), b.Dy())); err != nil {
			// Sizes always match here; draw unmasked if gg disagrees.
			dc.ResetClip()
		}
	}
	dc.DrawImage(colorImg, -b.Min.X, -b.Min.Y)
	return dc.Image()
}

// lumaMask converts img to an alpha mask of width x height from its luminance.
func lumaMask(img image.Image, width, height int) *image.Alpha {
	gray := image.NewGray(image.Rect(0, 0, width, height))
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	mask := image.NewAlpha(gray.Bounds())
	copy(mask.Pix, gray.Pix)
	return mask
}

// Annotate draws label in a dark caption bar along the bottom edge.
func (r *Renderer) Annotate(img image.Image, label string) image.Image {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)

	h := float64(captionHeight)
	if h > float64(b.Dy()) {
		h = float64(b.Dy())
	}
	dc.SetColor(color.RGBA{A: 180})
	dc.DrawRectangle(0, float64(b.Dy())-h, float64(b.Dx()), h)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(label, 4, float64(b.Dy())-h/2, 0, 0.35)
	return dc.Image()
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: r.quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)
