package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "textbox",
		Short: "Typewriter-style dialogue box renderer",
		Long: `textbox reveals dialogue one character at a time inside a three-line
retro game text box.

Text wraps at the character budget, '\n' starts a new speaker line and the
forced break rune (default '|') continues on a fresh line. Once the box is
full, every new line scrolls the oldest one out of view.

Marker formats accepted by --speaker-marker, --continuation-marker and
--forced-break:
  Literal:          '◆'
  Unicode escape:   '\u25C6'
  Unicode notation: 'U+25C6'
  Decimal:          '9670'
  Hexadecimal:      '0x25C6'
  Disabled:         'none'`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRenderCmd(),
		newPlayCmd(),
		newFramesCmd(),
		newBatchCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "textbox version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
