package pipeline

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eeemcal/beamprod/internal/runlog"
)

// Runs writes the good runs in the merge range as a table, one row per run
// in run log order. An empty category lists every category, followed by a
// per-category count.
func (p *Pipeline) Runs(ctx context.Context, w io.Writer, category string) error {
	l, err := p.fetchLog(ctx)
	if err != nil {
		return err
	}

	f := p.MergeFilter()
	f.Category = category
	sel := l.Select(f)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RUN\t%s\t%s\n", p.Cfg.RunLog.CategoryColumn, p.Cfg.RunLog.QualityColumn)
	for _, e := range sel {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Run, e.Category, e.Quality)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, e := range sel {
		counts[e.Category]++
	}
	fmt.Fprintf(w, "\n%d run(s) in [%d, %d]", len(sel), f.RunMin, f.RunMax)
	if category != "" {
		fmt.Fprintf(w, " with %s %q\n", p.Cfg.RunLog.CategoryColumn, category)
		return nil
	}
	fmt.Fprintln(w)
	for _, c := range categoriesOf(sel) {
		fmt.Fprintf(w, "  %s %q: %d\n", p.Cfg.RunLog.CategoryColumn, c, counts[c])
	}
	return nil
}

// categoriesOf returns distinct categories of entries in first-seen order.
func categoriesOf(entries []runlog.Entry) []string {
	sub := runlog.Log{Entries: entries}
	return sub.Categories()
}
