package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/config"
	"github.com/ryanlewis/textbox/internal/debug"
	"github.com/ryanlewis/textbox/internal/render"
	"github.com/ryanlewis/textbox/internal/watch"
)

type renderFlags struct {
	box        boxFlags
	debug      debugFlags
	output     string
	font       string
	background string
	audio      string
	ffmpeg     string
	watch      bool
}

func newRenderCmd() *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Render a reveal to a GIF, PNG sequence or MP4",
		Example: `  textbox render -t 'Hello!\nHow are you?' -o hello.gif
  textbox render -f intro.txt -c box.yaml -o intro.mp4 --audio intro.wav
  textbox render -f intro.txt -c box.toml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, args)
		},
	}

	fs := cmd.Flags()
	f.box.register(fs)
	f.debug.register(fs)
	fs.StringVarP(&f.output, "output", "o", "./output.gif", "Output file; the extension picks gif, png or mp4")
	fs.StringVar(&f.font, "font", "", "TTF/OTF font file (default: embedded Go Regular)")
	fs.StringVar(&f.background, "background", "", "PNG background image")
	fs.StringVar(&f.audio, "audio", "", "Also write a blip track to this WAV file")
	fs.StringVar(&f.ffmpeg, "ffmpeg", "", "ffmpeg binary for MP4 output")
	fs.BoolVarP(&f.watch, "watch", "w", false, "Re-render when the config or text file changes")
	return cmd
}

// load builds the effective config: the file, then the box flags, then the
// output flags that were set explicitly.
func (f *renderFlags) load(cmd *cobra.Command) (*config.Config, error) {
	fs := cmd.Flags()
	cfg, err := f.box.load(fs)
	if err != nil {
		return nil, err
	}
	if fs.Changed("output") || cfg.Output.Path == "" {
		cfg.Output.Path = f.output
	}
	if fs.Changed("font") {
		cfg.Style.Font = f.font
	}
	if fs.Changed("background") {
		cfg.Style.Background = f.background
	}
	if fs.Changed("audio") {
		cfg.Audio.Path = f.audio
	}
	if fs.Changed("ffmpeg") {
		cfg.Output.FFmpeg = f.ffmpeg
	}
	return cfg, nil
}

func (f *renderFlags) run(cmd *cobra.Command, args []string) error {
	sink, cleanup, err := f.debug.sink(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	once := func() error {
		cfg, err := f.load(cmd)
		if err != nil {
			return err
		}
		text, err := f.box.readText(args)
		if err != nil {
			return err
		}

		s := session(sink)
		defer s.Close()
		s.Emit("options", "Effective", optionsData(cfg))

		res, err := render.Run(cmd.Context(), render.Job{Text: text, Config: cfg, Debug: s})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d frames to %s\n", res.Frames, res.Output)
		if res.Audio != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote audio track to %s\n", res.Audio)
		}
		return nil
	}

	if !f.watch {
		return once()
	}
	return f.watchLoop(cmd, once)
}

// watchLoop renders once, then again after every change to the config or
// text file. Render errors are reported without stopping the loop.
func (f *renderFlags) watchLoop(cmd *cobra.Command, once func() error) error {
	var files []string
	for _, p := range []string{f.box.configPath, f.box.textFile} {
		if p != "" {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return errors.New("--watch needs --config or --file")
	}

	report := func() {
		if err := once(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	report()

	w, err := watch.New(files, 0)
	if err != nil {
		return err
	}
	w.OnChange = func(path string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s changed, re-rendering\n", path)
		report()
	}
	w.OnError = func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d file(s), press Ctrl+C to stop\n", len(files))
	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// optionsData records the effective reveal settings in the debug trace.
// Disabled markers are left out.
func optionsData(cfg *config.Config) debug.OptionsData {
	d := debug.OptionsData{
		Budget:  cfg.Box.Budget,
		SpeedMs: cfg.Output.SpeedMs,
		Audio:   cfg.Audio.Path != "",
	}
	speaker, continuation, forced, err := cfg.Markers()
	if err != nil {
		return d
	}
	d.Speaker = markerPtr(speaker)
	d.Continuation = markerPtr(continuation)
	d.ForcedBreak = markerPtr(forced)
	return d
}

func markerPtr(r rune) *int {
	if r == textbox.NoRune {
		return nil
	}
	n := int(r)
	return &n
}
