// Package frame rasterises reveal snapshots onto a dialogue box image.
//
// Each of the three window lines is drawn at a fixed origin. A line that
// starts with the speaker marker draws the marker in its own colour and
// offsets the rest of the line by the marker's advance.
package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Default canvas geometry and colours.
const (
	DefaultWidth    = 960
	DefaultHeight   = 256
	DefaultFontSize = 28.0
)

var (
	// TextWhite is the default text colour
	TextWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// MarkerBrown is the default speaker marker colour
	MarkerBrown = color.RGBA{R: 222, G: 163, B: 134, A: 255}
	// PanelBlack fills the default background panel
	PanelBlack = color.RGBA{R: 16, G: 16, B: 24, A: 255}
	// BorderGrey outlines the default background panel
	BorderGrey = color.RGBA{R: 200, G: 200, B: 208, A: 255}
)

// Errors returned by the frame package
var (
	// ErrNilFace is returned when a renderer is built without a font face
	ErrNilFace = errors.New("font face cannot be nil")
	// ErrBadStyle is returned when a style has a non-positive canvas or font size
	ErrBadStyle = errors.New("invalid frame style")
)

// Style describes the canvas and how lines are placed on it.
type Style struct {
	Width, Height int

	// Origins holds the top-left corner of each window line. Y is the top of
	// the text, not its baseline.
	Origins [3]image.Point

	FontSize    float64
	TextColor   color.RGBA
	MarkerColor color.RGBA

	// SpeakerMarker is the rune drawn in MarkerColor when it leads a line.
	// Zero disables the special case.
	SpeakerMarker rune
}

// DefaultStyle returns the classic 960x256 dialogue box layout.
func DefaultStyle() Style {
	return Style{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Origins:       LineOrigins(DefaultHeight),
		FontSize:      DefaultFontSize,
		TextColor:     TextWhite,
		MarkerColor:   MarkerBrown,
		SpeakerMarker: '◆',
	}
}

// LineOrigins spaces the three lines over a canvas of the given height:
// 60px from the top, the vertical centre, and 60px from the bottom.
func LineOrigins(height int) [3]image.Point {
	return [3]image.Point{
		{X: 40, Y: 60},
		{X: 40, Y: height / 2},
		{X: 40, Y: height - 60},
	}
}

// Bounds returns the canvas rectangle.
func (s Style) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Validate reports ErrBadStyle for unusable geometry.
func (s Style) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrBadStyle, s.Width, s.Height)
	}
	if s.FontSize <= 0 {
		return fmt.Errorf("%w: font size %g", ErrBadStyle, s.FontSize)
	}
	return nil
}
