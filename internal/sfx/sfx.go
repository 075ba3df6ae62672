// Package sfx synthesises the typewriter blip track that accompanies a
// reveal: one slot per frame, a short square-wave blip when the frame
// revealed a printable character, silence otherwise.
package sfx

import (
	"fmt"
	"math"
	"os"
	"time"
	"unicode"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/ryanlewis/textbox"
)

// Track defaults
const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultFrequency  = 880.0
	DefaultBlip       = 40 * time.Millisecond
)

// Options configures a track.
type Options struct {
	SampleRate beep.SampleRate
	// Frequency is the blip pitch in Hz
	Frequency float64
	// Blip is the blip length, capped at the slot length
	Blip time.Duration
	// Silent lists visible runes that never blip, such as the speaker marker
	Silent []rune
}

func (o Options) withDefaults() Options {
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Frequency <= 0 {
		o.Frequency = DefaultFrequency
	}
	if o.Blip <= 0 {
		o.Blip = DefaultBlip
	}
	return o
}

// Audible reports whether the frame produced by e gets a blip.
func (o Options) Audible(e textbox.Event) bool {
	if e.Kind != textbox.VisibleChar || unicode.IsSpace(e.Rune) {
		return false
	}
	for _, r := range o.Silent {
		if e.Rune == r {
			return false
		}
	}
	return true
}

// BlipGenerator is a square wave with a linear decay, ending after n samples.
type BlipGenerator struct {
	sr   beep.SampleRate
	freq float64
	n    int
	pos  int
}

// NewBlipGenerator creates a blip of the given pitch and length.
func NewBlipGenerator(sr beep.SampleRate, freq float64, d time.Duration) *BlipGenerator {
	return &BlipGenerator{sr: sr, freq: freq, n: sr.N(d)}
}

func (g *BlipGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.n {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.n {
			return i, true
		}
		t := float64(g.pos) / float64(g.sr)

		sample := 0.25
		if math.Sin(2*math.Pi*g.freq*t) < 0 {
			sample = -0.25
		}
		sample *= 1 - float64(g.pos)/float64(g.n)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BlipGenerator) Err() error {
	return nil
}

// Build returns a streamer with one slot of delay per step.
func Build(steps []textbox.Event, delay time.Duration, opts Options) beep.Streamer {
	opts = opts.withDefaults()
	slot := opts.SampleRate.N(delay)
	blip := min(opts.SampleRate.N(opts.Blip), slot)

	parts := make([]beep.Streamer, 0, 2*len(steps))
	for _, e := range steps {
		if !opts.Audible(e) {
			parts = append(parts, beep.Silence(slot))
			continue
		}
		parts = append(parts,
			beep.Take(blip, NewBlipGenerator(opts.SampleRate, opts.Frequency, opts.Blip)),
			beep.Silence(slot-blip),
		)
	}
	return beep.Seq(parts...)
}

// WriteWAV writes the track for steps as 16-bit stereo WAV to path.
func WriteWAV(path string, steps []textbox.Event, delay time.Duration, opts Options) error {
	opts = opts.withDefaults()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}

	format := beep.Format{SampleRate: opts.SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, Build(steps, delay, opts), format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return f.Close()
}
