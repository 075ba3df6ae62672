package frame

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/debug"
)

// Renderer draws snapshots onto copies of a background.
// A Renderer owns its face and is not safe for concurrent use.
type Renderer struct {
	style  Style
	face   font.Face
	bg     *image.RGBA
	ascent int
	debug  *debug.Session
	frames int
}

// NewRenderer validates the style and returns a renderer. A nil bg selects
// DefaultBackground.
func NewRenderer(s Style, face font.Face, bg *image.RGBA) (*Renderer, error) {
	if face == nil {
		return nil, ErrNilFace
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if bg == nil {
		bg = DefaultBackground(s)
	} else if bg.Bounds() != s.Bounds() {
		bg = FitBackground(bg, s)
	}
	return &Renderer{
		style:  s,
		face:   face,
		bg:     bg,
		ascent: face.Metrics().Ascent.Ceil(),
	}, nil
}

// SetDebug attaches a debug session receiving one frame/Drawn event per frame.
func (r *Renderer) SetDebug(s *debug.Session) { r.debug = s }

// Style returns the renderer's style.
func (r *Renderer) Style() Style { return r.style }

// Draw returns a new frame for w.
func (r *Renderer) Draw(w textbox.Window) *image.RGBA {
	dst := image.NewRGBA(r.style.Bounds())
	r.DrawInto(dst, w)
	return dst
}

// DrawInto paints the background and w onto dst, which must cover the
// style's bounds. Use it with AcquireCanvas to avoid per-frame allocation.
func (r *Renderer) DrawInto(dst *image.RGBA, w textbox.Window) {
	var start time.Time
	if r.debug != nil {
		start = time.Now()
	}

	draw.Draw(dst, r.bg.Bounds(), r.bg, image.Point{}, draw.Src)

	markers := 0
	for i, line := range w {
		if r.drawLine(dst, line, r.style.Origins[i]) {
			markers++
		}
	}

	if r.debug != nil {
		r.debug.Emit("frame", "Drawn", debug.FrameData{
			Index:     r.frames,
			Width:     r.style.Width,
			Height:    r.style.Height,
			Markers:   markers,
			ElapsedUs: time.Since(start).Microseconds(),
		})
	}
	r.frames++
}

// drawLine draws one window line and reports whether it led with the
// speaker marker.
func (r *Renderer) drawLine(dst *image.RGBA, line string, at image.Point) bool {
	if line == "" {
		return false
	}
	d := &font.Drawer{
		Dst:  dst,
		Face: r.face,
		Dot:  fixed.P(at.X, at.Y+r.ascent),
	}

	marker := r.style.SpeakerMarker
	rest, isMarker := "", false
	if marker != 0 {
		rest, isMarker = strings.CutPrefix(line, string(marker))
	}
	if !isMarker {
		d.Src = image.NewUniform(r.style.TextColor)
		d.DrawString(line)
		return false
	}

	if adv, ok := r.face.GlyphAdvance(marker); ok {
		d.Src = image.NewUniform(r.style.MarkerColor)
		d.DrawString(string(marker))
		d.Dot.X = fixed.I(at.X) + adv
	} else {
		size := r.ascent
		drawDiamond(dst, image.Rect(at.X, at.Y, at.X+size, at.Y+size), r.style.MarkerColor)
		d.Dot.X = fixed.I(at.X + size + size/4)
	}

	d.Src = image.NewUniform(r.style.TextColor)
	d.DrawString(rest)
	return true
}

// drawDiamond fills the rhombus inscribed in r. It stands in for fonts
// without a glyph for the marker.
func drawDiamond(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	h := r.Dy()
	cx := r.Min.X + r.Dx()/2
	for dy := 0; dy < h; dy++ {
		half := h/2 - abs(dy-h/2)
		for x := cx - half; x <= cx+half; x++ {
			dst.SetRGBA(x, r.Min.Y+dy, c)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
