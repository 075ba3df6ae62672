// Package encode writes rasterised reveal frames to GIF, PNG sequence or
// MP4 outputs.
package encode

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an output container.
type Format int

const (
	GIF Format = iota
	PNG
	MP4
)

// Errors returned when choosing an output format
var (
	// ErrNoExtension is returned when the output path has no extension
	ErrNoExtension = errors.New("output file must have an extension")
	// ErrUnknownFormat is returned for extensions other than gif, png and mp4
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrNoFrames is returned when a GIF or MP4 is closed before any frame
	ErrNoFrames = errors.New("no frames to encode")
)

func (f Format) String() string {
	switch f {
	case GIF:
		return "gif"
	case PNG:
		return "png"
	case MP4:
		return "mp4"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat picks the format from the extension of path. Matching is
// case-insensitive.
func ParseFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return 0, fmt.Errorf("%w: %s", ErrNoExtension, path)
	}
	switch strings.ToLower(ext[1:]) {
	case "gif":
		return GIF, nil
	case "png":
		return PNG, nil
	case "mp4":
		return MP4, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, ext[1:])
	}
}
