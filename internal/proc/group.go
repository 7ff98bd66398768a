package proc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group launches every command without waiting on the others, then blocks
// until all of them have exited. A failing command does not cancel the rest.
// Results are returned in the order of cmds. limit caps how many run at once;
// 0 starts them all immediately.
func Group(ctx context.Context, r Runner, cmds []Command, limit int) []Result {
	results := make([]Result, len(cmds))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, cmd := range cmds {
		i, cmd := i, cmd
		g.Go(func() error {
			results[i] = r.Run(ctx, cmd)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed returns the results whose command did not succeed.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
