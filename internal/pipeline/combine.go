package pipeline

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/display"
	"github.com/eeemcal/beamprod/internal/merge"
	"github.com/eeemcal/beamprod/internal/naming"
	"github.com/eeemcal/beamprod/internal/runlog"
)

// StageMerge is the report stage name of the hadd step.
const StageMerge = "merge"

// Combine selects the good runs of the configured category and range from
// the run log and merges their ROOT files into the configured output.
// Selected files that don't exist are warned about and still handed to hadd.
func (p *Pipeline) Combine(ctx context.Context) (*Report, error) {
	cfg := p.Cfg
	rep := NewReport("merge", cfg.DryRun)
	log := p.Log.With("invocation", rep.InvocationID)

	defer func() {
		rep.Finish()
		logSummary(log, rep)
	}()

	l, err := p.fetchLog(ctx)
	if err != nil {
		log.Error("%v", err)
		return rep, err
	}

	f := p.MergeFilter()
	runs := runlog.RunNumbers(l.Select(f))
	rep.Runs = runs
	if len(runs) == 0 {
		err := errors.Wrapf(ErrEmptySelection, "%s runs %d-%d, %s %q",
			f.Good, f.RunMin, f.RunMax, cfg.RunLog.CategoryColumn, f.Category)
		log.Error("%v", err)
		return rep, err
	}
	log.Info("Selected %d run(s): %v", len(runs), runs)

	inputs, err := naming.Template{Dir: cfg.Paths.OutputDir, Name: cfg.Naming.MergeInput}.Paths(runs)
	if err != nil {
		return rep, err
	}
	missing := merge.MissingInputs(inputs)
	for _, m := range missing {
		log.Warn("Input not found: %s", m)
	}
	rep.Missing = missing

	if cfg.DryRun {
		cmd := merge.Command(cfg.Tools.Hadd, cfg.Merge.Output, inputs, cfg.Merge.Force)
		log.Info("[DRY] Would merge: %s", cmd)
		rep.Add(Stage{Name: StageMerge, Status: StatusPlanned, Command: cmd.String()})
		return rep, nil
	}

	log.Info("Merging into %s", cfg.Merge.Output)
	res, err := merge.Run(ctx, p.Runner, cfg.Tools.Hadd, cfg.Merge.Output, inputs, cfg.Merge.Force)
	rep.Add(stageFromResult(StageMerge, res))
	if err != nil {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		log.Error("hadd failed: %v", err)
		logStderr(log, res)
		return rep, errors.Wrap(ErrStepFailed, err.Error())
	}

	if fi, err := os.Stat(cfg.Merge.Output); err == nil {
		rep.Artifacts = append(rep.Artifacts, Artifact{Path: cfg.Merge.Output, Size: fi.Size()})
		log.Success("Merged %d run(s) into %s (%s)", len(runs), cfg.Merge.Output, display.FormatBytes(fi.Size()))
	} else {
		log.Success("Merged %d run(s) into %s", len(runs), cfg.Merge.Output)
	}
	return rep, nil
}
