package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/user/alphaplay/pkg/ports"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderer_ComposeWithoutAlpha(t *testing.T) {
	r := New()
	out := r.Compose(solid(40, 30, color.RGBA{R: 255, A: 255}), nil)

	if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("expected 40x30, got %dx%d", b.Dx(), b.Dy())
	}
	red, _, _, a := out.At(20, 15).RGBA()
	if red == 0 || a != 0xffff {
		t.Errorf("expected opaque red, got r=%d a=%d", red, a)
	}
}

func TestRenderer_ComposeAppliesMatte(t *testing.T) {
	r := New()
	matte := solid(40, 30, color.Black)
	for y := 0; y < 30; y++ {
		for x := 20; x < 40; x++ {
			matte.Set(x, y, color.White)
		}
	}

	out := r.Compose(solid(40, 30, color.RGBA{G: 255, A: 255}), matte)

	if _, _, _, a := out.At(5, 15).RGBA(); a != 0 {
		t.Errorf("expected transparent pixel under black matte, got alpha %d", a)
	}
	if _, g, _, a := out.At(35, 15).RGBA(); g == 0 || a == 0 {
		t.Errorf("expected visible green under white matte, got g=%d a=%d", g, a)
	}
}

func TestRenderer_ComposeScalesMatte(t *testing.T) {
	r := New()
	out := r.Compose(solid(64, 64, color.RGBA{B: 255, A: 255}), solid(16, 16, color.White))
	if _, _, _, a := out.At(32, 32).RGBA(); a == 0 {
		t.Error("expected scaled white matte to keep the pixel visible")
	}
}

func TestRenderer_Annotate(t *testing.T) {
	r := New()
	img := solid(120, 60, color.White)
	out := r.Annotate(img, "entry 1 frame 42")

	if b := out.Bounds(); b.Dx() != 120 || b.Dy() != 60 {
		t.Fatalf("expected 120x60, got %dx%d", b.Dx(), b.Dy())
	}
	// The caption bar darkens the bottom edge, the top is untouched.
	rb, gb, bb, _ := out.At(110, 58).RGBA()
	if rb == 0xffff && gb == 0xffff && bb == 0xffff {
		t.Error("expected caption bar at the bottom")
	}
	rt, _, _, _ := out.At(60, 5).RGBA()
	if rt != 0xffff {
		t.Error("expected top of the image unchanged")
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()
	data, err := r.EncodeImage(solid(30, 30, color.White), ports.FormatPNG)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 30 || b.Dy() != 30 {
		t.Errorf("expected 30x30, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := NewWithQuality(60)
	data, err := r.EncodeImage(solid(50, 50, color.RGBA{R: 255, A: 255}), ports.FormatJPEG)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("jpeg.Decode failed: %v", err)
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	r := New()
	if _, err := r.EncodeImage(solid(2, 2, color.White), ports.ImageFormat(99)); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()
	resized := r.ResizeImage(image.NewRGBA(image.Rect(0, 0, 100, 100)), 50, 25)
	if b := resized.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("expected 50x25, got %dx%d", b.Dx(), b.Dy())
	}
}
