// Package batch renders every item of a script concurrently.
package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ryanlewis/textbox/internal/config"
	"github.com/ryanlewis/textbox/internal/debug"
	"github.com/ryanlewis/textbox/internal/render"
)

// Result holds the outcome of one item.
type Result struct {
	render.Result
	Err error
}

// RunFunc renders one job. Tests substitute it; Run uses render.Run.
type RunFunc func(ctx context.Context, job render.Job) (render.Result, error)

// Runner renders script items in parallel. Each item gets its own Box,
// renderer and debug session; sessions share Sink.
type Runner struct {
	// Limit caps concurrent renders when positive
	Limit int
	// Sink receives one named debug session per item when debug is enabled
	Sink debug.Sink
	// Render defaults to render.Run
	Render RunFunc
}

// Run renders every item and waits for all of them. A failing item does not
// cancel its siblings; results are returned in script order.
func (r *Runner) Run(ctx context.Context, sc *config.Script) []Result {
	renderFn := r.Render
	if renderFn == nil {
		renderFn = render.Run
	}

	results := make([]Result, len(sc.Items))
	g, gctx := errgroup.WithContext(ctx)
	if r.Limit > 0 {
		g.SetLimit(r.Limit)
	}

	for i, item := range sc.Items {
		cfg := sc.ItemConfig(item)
		g.Go(func() error {
			var session *debug.Session
			if r.Sink != nil {
				session = debug.NewNamedSession(r.Sink, item.Name)
			}

			start := time.Now()
			res, err := renderFn(gctx, render.Job{
				Name:   item.Name,
				Text:   item.Text,
				Config: cfg,
				Debug:  session,
			})
			res.Name = item.Name
			res.Output = cfg.Output.Path
			results[i] = Result{Result: res, Err: err}

			if session != nil {
				data := debug.BatchJobData{
					Name:      item.Name,
					Output:    cfg.Output.Path,
					Frames:    res.Frames,
					ElapsedMs: time.Since(start).Milliseconds(),
				}
				if err != nil {
					data.Error = err.Error()
				}
				session.Emit("batch", "Job", data)
				_ = session.Close()
			}

			// Errors live in results so siblings keep running
			return nil
		})
	}

	//nolint:errcheck // goroutines always return nil; errors stored in results
	g.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
