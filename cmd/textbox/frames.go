package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryanlewis/textbox"
)

func newFramesCmd() *cobra.Command {
	f := &boxFlags{}
	dbg := &debugFlags{}
	var count bool
	cmd := &cobra.Command{
		Use:   "frames [text...]",
		Short: "Print every snapshot of a reveal as text",
		Long: `Frames prints each snapshot as three bracketed lines, so leading and
trailing spaces stay visible. Snapshots are separated by a blank line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, cleanup, err := dbg.sink(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

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

			s := session(sink)
			defer s.Close()

			frames, err := textbox.Reveal(text, append(opts, textbox.WithDebug(s))...)
			if err != nil {
				return err
			}
			if count {
				fmt.Fprintln(cmd.OutOrStdout(), len(frames))
				return nil
			}
			if len(frames) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), textbox.Transcript(frames))
			}
			return nil
		},
	}
	f.register(cmd.Flags())
	dbg.register(cmd.Flags())
	cmd.Flags().BoolVar(&count, "count", false, "Print only the number of snapshots")
	return cmd
}
