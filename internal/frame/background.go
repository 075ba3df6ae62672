package frame

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Panel layout of the generated background
const (
	panelMargin = 8
	borderWidth = 4
	innerGap    = 4
)

// DefaultBackground draws a dark panel with a double border, sized to s.
func DefaultBackground(s Style) *image.RGBA {
	img := image.NewRGBA(s.Bounds())
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	outer := img.Bounds().Inset(panelMargin)
	fill(img, outer, BorderGrey)
	fill(img, outer.Inset(borderWidth), PanelBlack)

	// Thin inner rule inside the main border
	inner := outer.Inset(borderWidth + innerGap)
	frameRect(img, inner, BorderGrey)
	return img
}

// LoadBackground decodes a PNG and fits it to s: larger images are cropped
// from the top-left corner, smaller ones leave the rest transparent.
func LoadBackground(path string, s Style) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open background: %w", err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode background %s: %w", path, err)
	}
	return FitBackground(src, s), nil
}

// FitBackground copies src onto a canvas of the style's size.
func FitBackground(src image.Image, s Style) *image.RGBA {
	img := image.NewRGBA(s.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// frameRect draws a one-pixel outline of r.
func frameRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}
