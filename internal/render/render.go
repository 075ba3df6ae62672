// Package render runs the whole pipeline for one dialogue: compile, step,
// rasterise, encode and, when configured, write the blip track.
package render

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/config"
	"github.com/ryanlewis/textbox/internal/debug"
	"github.com/ryanlewis/textbox/internal/encode"
	"github.com/ryanlewis/textbox/internal/frame"
	"github.com/ryanlewis/textbox/internal/sfx"
)

// Job is one text rendered to the output named by its config.
type Job struct {
	Name   string
	Text   string
	Config *config.Config
	Debug  *debug.Session
}

// Result describes a finished render.
type Result struct {
	Name    string
	Output  string
	Audio   string
	Frames  int
	Elapsed time.Duration
}

// NewRenderer builds a frame renderer from the style settings of cfg.
func NewRenderer(cfg *config.Config) (*frame.Renderer, error) {
	style, err := cfg.FrameStyle()
	if err != nil {
		return nil, err
	}
	face, err := frame.NewFace(cfg.Style.Font, style.FontSize)
	if err != nil {
		return nil, err
	}

	var bg *image.RGBA
	if cfg.Style.Background != "" {
		if bg, err = frame.LoadBackground(cfg.Style.Background, style); err != nil {
			return nil, err
		}
	}
	return frame.NewRenderer(style, face, bg)
}

// Run renders job. The audio track is written before the video so that MP4
// output can mux it.
func Run(ctx context.Context, job Job) (Result, error) {
	start := time.Now()
	cfg := job.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	res := Result{Name: job.Name, Output: cfg.Output.Path, Audio: cfg.Audio.Path}

	opts, err := cfg.Options()
	if err != nil {
		return res, err
	}
	box, err := textbox.New(job.Text, append(opts, textbox.WithDebug(job.Debug))...)
	if err != nil {
		return res, err
	}

	r, err := NewRenderer(cfg)
	if err != nil {
		return res, err
	}
	r.SetDebug(job.Debug)

	if cfg.Audio.Path != "" {
		steps := textbox.SnapshotEvents(box.Events())
		if err := sfx.WriteWAV(cfg.Audio.Path, steps, cfg.Delay(), AudioOptions(cfg)); err != nil {
			return res, err
		}
	}

	out, err := encode.File(ctx, box, r, cfg.Output.Path, encode.Options{
		DelayMs: cfg.Output.SpeedMs,
		FFmpeg:  cfg.Output.FFmpeg,
		Audio:   cfg.Audio.Path,
		Debug:   job.Debug,
	})
	res.Frames = out.Frames
	res.Elapsed = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("render %s: %w", cfg.Output.Path, err)
	}
	return res, nil
}

// AudioOptions converts the audio settings. The speaker marker never blips.
func AudioOptions(cfg *config.Config) sfx.Options {
	o := sfx.Options{
		Frequency: cfg.Audio.Frequency,
		Blip:      time.Duration(cfg.Audio.BlipMs) * time.Millisecond,
	}
	if speaker, _, _, err := cfg.Markers(); err == nil && speaker != textbox.NoRune {
		o.Silent = []rune{speaker}
	}
	return o
}
