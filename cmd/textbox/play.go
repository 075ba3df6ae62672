package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/player"
)

var errNotTerminal = errors.New("play needs an interactive terminal; use render or frames instead")

func newPlayCmd() *cobra.Command {
	f := &boxFlags{}
	var markerColor string
	cmd := &cobra.Command{
		Use:   "play [text...]",
		Short: "Play a reveal in the terminal",
		Long: `Play animates the reveal inside a bordered box.

Keys: space finishes the reveal, r restarts it, q quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
				return errNotTerminal
			}

			cfg, err := f.load(cmd.Flags())
			if err != nil {
				return err
			}
			text, err := f.readText(args)
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			b, err := textbox.New(text, opts...)
			if err != nil {
				return err
			}

			speaker, _, _, err := cfg.Markers()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("marker-color") {
				markerColor = cfg.Style.MarkerColor
			}
			if err := player.Run(b, player.Options{
				Delay:         cfg.Delay(),
				SpeakerMarker: speaker,
				MarkerColor:   markerColor,
			}); err != nil {
				return fmt.Errorf("player: %w", err)
			}
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&markerColor, "marker-color", "", "Terminal colour of the speaker marker (default: style.marker_color)")
	return cmd
}
