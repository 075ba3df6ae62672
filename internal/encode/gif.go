package encode

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	"github.com/ryanlewis/textbox/internal/frame"
)

// rampSteps is the number of anti-aliasing shades between the panel colour
// and each ink colour.
const rampSteps = 16

// Palette returns the GIF palette for s: transparency, the default panel and
// border colours, shade ramps from the panel to the text and marker colours,
// then the web-safe cube for arbitrary backgrounds.
func Palette(s frame.Style) color.Palette {
	p := make(color.Palette, 0, 256)
	p = append(p, color.RGBA{}, frame.PanelBlack, frame.BorderGrey)
	p = appendRamp(p, frame.PanelBlack, s.TextColor)
	p = appendRamp(p, frame.PanelBlack, s.MarkerColor)
	for _, c := range palette.WebSafe {
		if len(p) == cap(p) {
			break
		}
		p = append(p, c)
	}
	return p
}

// appendRamp adds rampSteps colours from just past from up to and including to.
func appendRamp(p color.Palette, from, to color.RGBA) color.Palette {
	lerp := func(a, b uint8, i int) uint8 {
		return uint8((int(a)*(rampSteps-i) + int(b)*i) / rampSteps)
	}
	for i := 1; i <= rampSteps; i++ {
		p = append(p, color.RGBA{
			R: lerp(from.R, to.R, i),
			G: lerp(from.G, to.G, i),
			B: lerp(from.B, to.B, i),
			A: 255,
		})
	}
	return p
}

// DelayCentis converts a per-frame delay in milliseconds to GIF hundredths
// of a second, rounding to nearest with a floor of 1.
func DelayCentis(ms int) int {
	cs := (ms + 5) / 10
	if cs < 1 {
		return 1
	}
	return cs
}

// gifSink quantises frames as they arrive and writes the animation on Close.
type gifSink struct {
	path    string
	palette color.Palette
	delay   int
	anim    gif.GIF
}

func newGIFSink(path string, opts Options) *gifSink {
	return &gifSink{
		path:    path,
		palette: Palette(opts.Style),
		delay:   DelayCentis(opts.DelayMs),
		anim:    gif.GIF{LoopCount: 0},
	}
}

func (s *gifSink) WriteFrame(img image.Image) error {
	b := img.Bounds()
	pm := image.NewPaletted(b, s.palette)
	draw.Draw(pm, b, img, b.Min, draw.Src)

	s.anim.Image = append(s.anim.Image, pm)
	s.anim.Delay = append(s.anim.Delay, s.delay)
	s.anim.Disposal = append(s.anim.Disposal, gif.DisposalNone)
	return nil
}

func (s *gifSink) Close() error {
	if len(s.anim.Image) == 0 {
		return fmt.Errorf("%w: %s", ErrNoFrames, s.path)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := gif.EncodeAll(f, &s.anim); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return f.Close()
}
