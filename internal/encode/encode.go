package encode

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/debug"
	"github.com/ryanlewis/textbox/internal/frame"
)

// DefaultDelayMs is the per-frame delay used when none is configured.
const DefaultDelayMs = 50

// Sink receives frames in order. WriteFrame must not retain img after it
// returns; callers reuse the canvas for the next frame.
type Sink interface {
	WriteFrame(img image.Image) error
	Close() error
}

// Options configures a sink.
type Options struct {
	// DelayMs is the time each frame stays on screen
	DelayMs int
	// Style determines the GIF palette
	Style frame.Style
	// FFmpeg overrides the ffmpeg binary for MP4 output
	FFmpeg string
	// Audio is a WAV file muxed into MP4 output
	Audio string
	// Debug receives encode/Frame and encode/Done events
	Debug *debug.Session
}

func (o Options) delay() int {
	if o.DelayMs <= 0 {
		return DefaultDelayMs
	}
	return o.DelayMs
}

// NewSink opens a sink of the given format writing to path. The context
// bounds the lifetime of external encoder processes.
func NewSink(ctx context.Context, f Format, path string, opts Options) (Sink, error) {
	opts.DelayMs = opts.delay()
	switch f {
	case GIF:
		return newGIFSink(path, opts), nil
	case PNG:
		return newPNGSink(path), nil
	case MP4:
		return newMP4Sink(ctx, path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// Result summarises an encode.
type Result struct {
	Frames int
	// Steps holds, per frame, the event that produced it
	Steps []textbox.Event
}

// Encoder drives a Box through a Renderer into a Sink.
type Encoder struct {
	Renderer *frame.Renderer
	Format   Format
	Output   string
	DelayMs  int
	Debug    *debug.Session
}

// Encode renders every snapshot of b into sink and closes it. The sink is
// closed on every path; a cancelled context stops between frames.
func (e *Encoder) Encode(ctx context.Context, b *textbox.Box, sink Sink) (res Result, err error) {
	start := time.Now()
	defer func() {
		if cerr := sink.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err == nil && e.Debug != nil {
			e.Debug.Emit("encode", "Done", debug.EncodeDoneData{
				Format:    e.Format.String(),
				Output:    e.Output,
				Frames:    res.Frames,
				ElapsedMs: time.Since(start).Milliseconds(),
			})
		}
	}()

	canvas := frame.AcquireCanvas(e.Renderer.Style())
	defer frame.ReleaseCanvas(canvas)

	for w, ok := b.Next(); ok; w, ok = b.Next() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		e.Renderer.DrawInto(canvas, w)
		if err := sink.WriteFrame(canvas); err != nil {
			return res, err
		}

		if e.Debug != nil {
			e.Debug.Emit("encode", "Frame", debug.EncodeFrameData{
				Index:   res.Frames,
				Format:  e.Format.String(),
				DelayMs: e.DelayMs,
			})
		}
		res.Steps = append(res.Steps, b.Last())
		res.Frames++
	}
	return res, nil
}

// File is the one-call path: it opens a sink for output, picks the format
// from its extension and encodes b through r.
func File(ctx context.Context, b *textbox.Box, r *frame.Renderer, output string, opts Options) (Result, error) {
	f, err := ParseFormat(output)
	if err != nil {
		return Result{}, err
	}
	if opts.Style.Width == 0 {
		opts.Style = r.Style()
	}
	opts.DelayMs = opts.delay()

	sink, err := NewSink(ctx, f, output, opts)
	if err != nil {
		return Result{}, err
	}
	e := &Encoder{Renderer: r, Format: f, Output: output, DelayMs: opts.DelayMs, Debug: opts.Debug}
	return e.Encode(ctx, b, sink)
}
