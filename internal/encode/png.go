package encode

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// pngSink writes every frame to its own file as soon as it arrives.
type pngSink struct {
	path string
	n    int
	enc  png.Encoder
}

func newPNGSink(path string) *pngSink {
	return &pngSink{
		path: path,
		enc:  png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// FramePath returns the file written for frame i of a PNG sequence at path.
// The extension is replaced, so "out.png" yields "out-0.png", "out-1.png"...
func FramePath(path string, i int) string {
	return fmt.Sprintf("%s-%d.png", strings.TrimSuffix(path, filepath.Ext(path)), i)
}

func (s *pngSink) WriteFrame(img image.Image) error {
	path := FramePath(s.path, s.n)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := s.enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.n++
	return nil
}

// Close is a no-op; the sequence is complete after the last WriteFrame.
func (s *pngSink) Close() error { return nil }
