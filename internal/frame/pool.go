package frame

import (
	"image"
	"sync"
)

// canvasPool recycles RGBA canvases between frames of streaming encoders.
//
// A 960x256 canvas is close to a megabyte; reveals produce one frame per
// character, so encoders that consume a frame before asking for the next
// (PNG, MP4, GIF quantisation) reuse a single canvas instead.
var canvasPool sync.Pool

// AcquireCanvas returns a canvas covering s.Bounds(). Its pixels are
// unspecified; DrawInto overwrites all of them.
func AcquireCanvas(s Style) *image.RGBA {
	if img, _ := canvasPool.Get().(*image.RGBA); img != nil && img.Rect == s.Bounds() {
		return img
	}
	return image.NewRGBA(s.Bounds())
}

// ReleaseCanvas returns img to the pool. The caller must not use img
// afterwards.
func ReleaseCanvas(img *image.RGBA) {
	if img == nil {
		return
	}
	canvasPool.Put(img)
}
