package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanlewis/textbox"
	"github.com/ryanlewis/textbox/internal/config"
	"github.com/ryanlewis/textbox/internal/debug"
	"github.com/ryanlewis/textbox/internal/render"
)

func newScript(n int) *config.Script {
	sc := &config.Script{Config: *config.Defaults()}
	for i := range n {
		sc.Items = append(sc.Items, config.Item{
			Name:   fmt.Sprintf("job-%d", i),
			Text:   fmt.Sprintf("line %d", i),
			Output: fmt.Sprintf("out-%d.gif", i),
		})
	}
	return sc
}

func TestRunRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	r := &Runner{
		Limit: 2,
		Render: func(ctx context.Context, job render.Job) (render.Result, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return render.Result{Frames: 1}, nil
		},
	}

	results := r.Run(context.Background(), newScript(6))
	require.Len(t, results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Empty(t, Failed(results))
}

func TestRunKeepsOrderAndErrors(t *testing.T) {
	boom := errors.New("boom")
	r := &Runner{
		Render: func(ctx context.Context, job render.Job) (render.Result, error) {
			if job.Name == "job-1" {
				return render.Result{}, boom
			}
			n, err := textbox.Count(job.Text, textbox.WithBudget(job.Config.Box.Budget))
			return render.Result{Frames: n}, err
		},
	}

	sc := newScript(3)
	sc.Items[2].Budget = 1
	results := r.Run(context.Background(), sc)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("job-%d", i), res.Name)
		assert.Equal(t, fmt.Sprintf("out-%d.gif", i), res.Output)
	}
	assert.ErrorIs(t, results[1].Err, boom)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 7, results[0].Frames)
	assert.Equal(t, 10, results[2].Frames, "per-item budget forces wraps and shifts")

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "job-1", failed[0].Name)
}

func TestRunRendersFiles(t *testing.T) {
	dir := t.TempDir()
	sc := newScript(3)
	for i := range sc.Items {
		sc.Items[i].Output = filepath.Join(dir, sc.Items[i].Output)
	}

	results := (&Runner{Limit: 2}).Run(context.Background(), sc)
	require.Empty(t, Failed(results))
	for _, res := range results {
		assert.FileExists(t, res.Output)
		assert.Positive(t, res.Frames)
	}
}

func TestRunDebugSessions(t *testing.T) {
	debug.SetEnabled(true)
	defer debug.SetEnabled(false)

	var buf bytes.Buffer
	r := &Runner{
		Sink: debug.NewJSONSink(&buf),
		Render: func(ctx context.Context, job render.Job) (render.Result, error) {
			return render.Result{Frames: 2}, nil
		},
	}
	r.Run(context.Background(), newScript(3))

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, `"phase":"batch"`))
	for i := range 3 {
		assert.Contains(t, out, fmt.Sprintf(`"name":"job-%d"`, i))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	sc := newScript(2)
	for i := range sc.Items {
		sc.Items[i].Output = filepath.Join(dir, sc.Items[i].Output)
	}
	results := (&Runner{}).Run(ctx, sc)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}
