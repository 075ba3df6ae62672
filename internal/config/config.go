// Package config loads render settings from YAML or TOML files.
//
// A file only needs the keys it changes; everything else keeps the value
// from Defaults. Marker fields take any form accepted by ParseRune, and an
// empty marker keeps the default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/frame"
)

// Config errors
var (
	// ErrUnknownConfigFormat is returned for files that are neither YAML nor TOML
	ErrUnknownConfigFormat = errors.New("unknown config format")
	// ErrInvalidConfig wraps every validation failure other than the budget
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the complete set of render settings.
type Config struct {
	Box    BoxConfig    `yaml:"box" toml:"box"`
	Style  StyleConfig  `yaml:"style" toml:"style"`
	Output OutputConfig `yaml:"output" toml:"output"`
	Audio  AudioConfig  `yaml:"audio" toml:"audio"`
}

// BoxConfig holds the reveal engine options.
type BoxConfig struct {
	Budget             int    `yaml:"budget" toml:"budget"`
	SpeakerMarker      string `yaml:"speaker_marker" toml:"speaker_marker"`
	ContinuationMarker string `yaml:"continuation_marker" toml:"continuation_marker"`
	ForcedBreak        string `yaml:"forced_break" toml:"forced_break"`
	// Plain disables all three markers
	Plain bool `yaml:"plain" toml:"plain"`
}

// StyleConfig holds the canvas settings.
type StyleConfig struct {
	Width       int     `yaml:"width" toml:"width"`
	Height      int     `yaml:"height" toml:"height"`
	Font        string  `yaml:"font" toml:"font"`
	FontSize    float64 `yaml:"font_size" toml:"font_size"`
	TextColor   string  `yaml:"text_color" toml:"text_color"`
	MarkerColor string  `yaml:"marker_color" toml:"marker_color"`
	Background  string  `yaml:"background" toml:"background"`
}

// OutputConfig holds the encoder settings.
type OutputConfig struct {
	Path    string `yaml:"path" toml:"path"`
	SpeedMs int    `yaml:"speed_ms" toml:"speed_ms"`
	FFmpeg  string `yaml:"ffmpeg" toml:"ffmpeg"`
}

// AudioConfig holds the blip track settings.
type AudioConfig struct {
	Path      string  `yaml:"path" toml:"path"`
	Frequency float64 `yaml:"frequency" toml:"frequency"`
	BlipMs    int     `yaml:"blip_ms" toml:"blip_ms"`
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		Box: BoxConfig{
			Budget:             textbox.DefaultBudget,
			SpeakerMarker:      string(textbox.DefaultSpeakerMarker),
			ContinuationMarker: string(textbox.DefaultContinuationMarker),
			ForcedBreak:        string(textbox.DefaultForcedBreak),
		},
		Style: StyleConfig{
			Width:       frame.DefaultWidth,
			Height:      frame.DefaultHeight,
			FontSize:    frame.DefaultFontSize,
			TextColor:   hexColor(frame.TextWhite),
			MarkerColor: hexColor(frame.MarkerBrown),
		},
		Output: OutputConfig{
			Path:    "./output.gif",
			SpeedMs: 50,
		},
		Audio: AudioConfig{
			Frequency: 880,
			BlipMs:    40,
		},
	}
}

// Load reads path over Defaults and validates the result. The format is
// chosen by extension: .yaml, .yml or .toml.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// decodeFile decodes a YAML or TOML file into v, rejecting unknown keys.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document leaves v untouched
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode YAML file %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("failed to decode TOML file %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}
	return nil
}

// Validate checks every field that can be wrong. A budget below 1 wraps
// textbox.ErrInvalidBudget; everything else wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Box.Budget < 1 {
		return fmt.Errorf("%w: %d", textbox.ErrInvalidBudget, c.Box.Budget)
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if _, err := c.FrameStyle(); err != nil {
		return err
	}
	if c.Output.SpeedMs < 1 {
		return fmt.Errorf("%w: speed_ms must be positive, got %d", ErrInvalidConfig, c.Output.SpeedMs)
	}
	if c.Audio.BlipMs < 0 || c.Audio.Frequency < 0 {
		return fmt.Errorf("%w: audio frequency and blip_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Markers resolves the three marker fields, applying Plain. Disabled markers
// are textbox.NoRune.
func (c *Config) Markers() (speaker, continuation, forced rune, err error) {
	if c.Box.Plain {
		return textbox.NoRune, textbox.NoRune, textbox.NoRune, nil
	}
	fields := []struct {
		name  string
		value string
		def   rune
		dst   *rune
	}{
		{"speaker_marker", c.Box.SpeakerMarker, textbox.DefaultSpeakerMarker, &speaker},
		{"continuation_marker", c.Box.ContinuationMarker, textbox.DefaultContinuationMarker, &continuation},
		{"forced_break", c.Box.ForcedBreak, textbox.DefaultForcedBreak, &forced},
	}
	for _, f := range fields {
		if f.value == "" {
			*f.dst = f.def
			continue
		}
		r, err := ParseRune(f.value)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f.name, err)
		}
		*f.dst = r
	}
	return speaker, continuation, forced, nil
}

// Options converts the box settings to reveal options.
func (c *Config) Options() ([]textbox.Option, error) {
	speaker, continuation, forced, err := c.Markers()
	if err != nil {
		return nil, err
	}
	return []textbox.Option{
		textbox.WithBudget(c.Box.Budget),
		textbox.WithSpeakerMarker(speaker),
		textbox.WithContinuationMarker(continuation),
		textbox.WithForcedBreak(forced),
	}, nil
}

// FrameStyle converts the style settings. The renderer's speaker marker
// follows the box settings so that a custom marker is still coloured.
func (c *Config) FrameStyle() (frame.Style, error) {
	s := frame.DefaultStyle()
	s.Width, s.Height = c.Style.Width, c.Style.Height
	s.Origins = frame.LineOrigins(c.Style.Height)
	s.FontSize = c.Style.FontSize

	var err error
	if s.TextColor, err = parseColor("text_color", c.Style.TextColor, frame.TextWhite); err != nil {
		return frame.Style{}, err
	}
	if s.MarkerColor, err = parseColor("marker_color", c.Style.MarkerColor, frame.MarkerBrown); err != nil {
		return frame.Style{}, err
	}
	if s.SpeakerMarker, _, _, err = c.Markers(); err != nil {
		return frame.Style{}, err
	}

	if err := s.Validate(); err != nil {
		return frame.Style{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return s, nil
}

// Delay returns the per-frame delay.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Output.SpeedMs) * time.Millisecond
}

// parseColor parses "#rrggbb" or "#rgb". Empty keeps def.
func parseColor(field, s string, def color.RGBA) (color.RGBA, error) {
	if s == "" {
		return def, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
