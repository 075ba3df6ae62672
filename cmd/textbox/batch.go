package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryanlewis/textbox/internal/batch"
	"github.com/ryanlewis/textbox/internal/config"
)

func newBatchCmd() *cobra.Command {
	dbg := &debugFlags{}
	var jobs int
	cmd := &cobra.Command{
		Use:   "batch <script>",
		Short: "Render every dialogue of a YAML or TOML script",
		Example: `  # script.yaml
  box:
    budget: 20
  items:
    - name: intro
      text: "Welcome!\nPress start."
      output: intro.gif

  textbox batch script.yaml --jobs 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, cleanup, err := dbg.sink(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sc, err := config.LoadScript(args[0])
			if err != nil {
				return err
			}
			for i := range sc.Items {
				sc.Items[i].Text = prepareText(sc.Items[i].Text)
			}

			runner := &batch.Runner{Limit: jobs, Sink: sink}
			results := runner.Run(cmd.Context(), sc)

			out := cmd.OutOrStdout()
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", res.Name, res.Err)
					continue
				}
				fmt.Fprintf(out, "ok   %s: %d frames to %s (%s)\n", res.Name, res.Frames, res.Output, res.Elapsed.Round(time.Millisecond))
			}
			if failed := batch.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d items failed", len(failed), len(results))
			}
			return nil
		},
	}
	dbg.register(cmd.Flags())
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Maximum concurrent renders")
	return cmd
}
