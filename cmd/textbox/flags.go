package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/unicode/norm"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/config"
	"github.com/ryanlewis/textbox/internal/debug"
)

var errNoText = errors.New("no text provided")

// runeValue is a pflag.Value accepting every marker format of ParseRune.
type runeValue struct {
	r *rune
}

func newRuneValue(def rune, p *rune) *runeValue {
	*p = def
	return &runeValue{r: p}
}

func (v *runeValue) String() string { return config.FormatRune(*v.r) }

func (v *runeValue) Set(s string) error {
	r, err := config.ParseRune(s)
	if err != nil {
		return err
	}
	*v.r = r
	return nil
}

func (v *runeValue) Type() string { return "rune" }

var _ pflag.Value = (*runeValue)(nil)

// boxFlags are the flags every command that reveals text shares.
type boxFlags struct {
	configPath   string
	text         string
	textFile     string
	budget       int
	speaker      rune
	continuation rune
	forcedBreak  rune
	plain        bool
	speedMs      int
}

func (f *boxFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML or TOML settings file")
	fs.StringVarP(&f.text, "text", "t", "", "Text to reveal (default: arguments joined by spaces)")
	fs.StringVarP(&f.textFile, "file", "f", "", "Read the text from a file")
	fs.IntVarP(&f.budget, "budget", "l", textbox.DefaultBudget, "Characters per line before wrapping")
	fs.Var(newRuneValue(textbox.DefaultSpeakerMarker, &f.speaker), "speaker-marker", "Rune opening every speaker line")
	fs.Var(newRuneValue(textbox.DefaultContinuationMarker, &f.continuation), "continuation-marker", "Rune opening every wrapped line")
	fs.Var(newRuneValue(textbox.DefaultForcedBreak, &f.forcedBreak), "forced-break", "Rune forcing a line break")
	fs.BoolVar(&f.plain, "plain", false, "Disable all markers")
	fs.IntVarP(&f.speedMs, "speed", "s", 50, "Milliseconds per frame")
}

// load reads the settings file, if any, then applies the flags the user set
// explicitly on top of it.
func (f *boxFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Defaults()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	if fs.Changed("budget") {
		cfg.Box.Budget = f.budget
	}
	if fs.Changed("speaker-marker") {
		cfg.Box.SpeakerMarker = config.FormatRune(f.speaker)
	}
	if fs.Changed("continuation-marker") {
		cfg.Box.ContinuationMarker = config.FormatRune(f.continuation)
	}
	if fs.Changed("forced-break") {
		cfg.Box.ForcedBreak = config.FormatRune(f.forcedBreak)
	}
	if fs.Changed("plain") {
		cfg.Box.Plain = f.plain
	}
	if fs.Changed("speed") {
		cfg.Output.SpeedMs = f.speedMs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readText picks the text from --text, --file or the arguments, in that
// order, and prepares it.
func (f *boxFlags) readText(args []string) (string, error) {
	switch {
	case f.text != "":
		return prepareText(f.text), nil
	case f.textFile != "":
		data, err := os.ReadFile(f.textFile)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return norm.NFC.String(strings.TrimRight(string(data), "\n")), nil
	case len(args) > 0:
		return prepareText(strings.Join(args, " ")), nil
	default:
		return "", errNoText
	}
}

var escapes = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\t`, "\t")

// prepareText expands the escapes shells make awkward to type and composes
// the text to NFC, so a decomposed accent reveals as one character.
func prepareText(s string) string {
	return norm.NFC.String(escapes.Replace(s))
}

// debugFlags mirror the debug switches of every command.
type debugFlags struct {
	enabled bool
	file    string
	pretty  bool
}

func (d *debugFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&d.enabled, "debug", false, "Enable debug mode (outputs to stderr)")
	fs.StringVar(&d.file, "debug-file", "", "Write debug output to file instead of stderr")
	fs.BoolVar(&d.pretty, "debug-pretty", false, "Use pretty format for debug output (default: JSON)")
}

// sink enables debug output when asked to by a flag or the environment. It
// returns a nil sink when debug is off; the returned cleanup is always safe
// to call.
func (d *debugFlags) sink(cmd *cobra.Command) (debug.Sink, func(), error) {
	debug.InitFromEnv()
	if d.enabled || d.file != "" {
		debug.SetEnabled(true)
	}
	if !debug.Enabled() {
		return nil, func() {}, nil
	}

	var output io.Writer = cmd.ErrOrStderr()
	cleanup := func() {}
	if d.file != "" {
		file, err := os.Create(d.file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create debug file: %w", err)
		}
		output = file
		cleanup = func() { file.Close() }
	}

	if d.pretty || debug.PrettyFromEnv() {
		return debug.NewPrettySink(output), cleanup, nil
	}
	return debug.NewJSONSink(output), cleanup, nil
}

// session opens a debug session on sink, or returns nil without one.
func session(sink debug.Sink) *debug.Session {
	if sink == nil {
		return nil
	}
	return debug.NewSession(sink)
}
