package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/decode"
	"github.com/eeemcal/beamprod/internal/display"
	"github.com/eeemcal/beamprod/internal/logging"
	"github.com/eeemcal/beamprod/internal/naming"
	"github.com/eeemcal/beamprod/internal/plot"
	"github.com/eeemcal/beamprod/internal/proc"
)

// Stage names used in reports.
const (
	StageValidate = "validate"
	StageDecode   = "decode"
	StagePlot     = "plot"
	StageRelocate = "relocate"
)

// Produce runs the fast offline production for one run:
// validate → decode (unless skipped) → plot → relocate → manifest.
//
// Validation failures return before anything is launched or created. A
// failed decode or plot step stops the run unless KeepGoing is set, in which
// case the remaining steps still run and ErrStepFailed is returned at the
// end. The returned report is never nil.
func (p *Pipeline) Produce(ctx context.Context, run int) (*Report, error) {
	cfg := p.Cfg
	rep := NewReport("produce", cfg.DryRun)
	rep.Run = &run
	log := p.Log.With("run", run, "invocation", rep.InvocationID)

	defer func() {
		rep.Finish()
		logSummary(log, rep)
	}()

	// --- Validate ---
	raw, err := p.validate(ctx, run)
	if err != nil {
		rep.Add(Stage{Name: StageValidate, Status: StatusFailed, Error: err.Error()})
		log.Error("%v", err)
		return rep, err
	}
	rep.Add(Stage{Name: StageValidate, Status: StatusOK})
	log.Success("Run %d found in run log, raw file %s", run, raw)
	if cfg.DryRun {
		log.Warn("DRY RUN: nothing will be launched or written")
	}

	var failed bool

	// --- Decode ---
	if cfg.SkipDecode {
		log.Info("Skipping decode")
		rep.Add(Stage{Name: StageDecode, Status: StatusSkipped})
	} else {
		ok, err := p.decode(ctx, log, rep, run)
		if err != nil {
			return rep, err
		}
		if !ok {
			failed = true
			if !cfg.KeepGoing {
				return rep, errors.Wrap(ErrStepFailed, StageDecode)
			}
			log.Warn("Continuing after failed decode (--keep-going)")
		}
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	// --- Plot ---
	ok, err := p.plot(ctx, log, rep, run)
	if err != nil {
		return rep, err
	}
	if !ok {
		failed = true
		if !cfg.KeepGoing {
			return rep, errors.Wrap(ErrStepFailed, StagePlot)
		}
		log.Warn("Continuing after failed plot step (--keep-going)")
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	// --- Relocate ---
	runDir, err := naming.Template{Dir: cfg.Paths.WorkDir, Name: cfg.Naming.RunDir}.Path(run)
	if err != nil {
		return rep, err
	}
	if err := p.relocate(log, rep, run, runDir); err != nil {
		return rep, err
	}
	if cfg.DryRun {
		return rep, nil
	}

	// --- Done ---
	rep.Finish()
	manifest := filepath.Join(runDir, cfg.Naming.Manifest)
	if err := rep.WriteManifest(manifest); err != nil {
		log.Error("%v", err)
		return rep, err
	}
	log.Debug("Manifest written: %s", manifest)

	if failed {
		return rep, errors.Wrapf(ErrStepFailed, "%v", rep.Failed())
	}
	log.Success("Run %d done: %s", run, runDir)
	return rep, nil
}

// validate checks that run is listed in the run log and that its raw file
// exists. It has no side effects.
func (p *Pipeline) validate(ctx context.Context, run int) (string, error) {
	cfg := p.Cfg
	raw, err := naming.Template{Dir: cfg.Paths.DataDir, Name: cfg.Naming.RawFile}.Path(run)
	if err != nil {
		return "", err
	}

	l, err := p.fetchLog(ctx)
	if err != nil {
		return "", err
	}
	if !l.Contains(run) {
		return "", errors.Wrapf(ErrRunNotInLog, "run %d", run)
	}

	if _, err := os.Stat(raw); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrRawFileMissing, "%s", raw)
		}
		return "", errors.Wrapf(err, "stat %s", raw)
	}
	return raw, nil
}

// decode runs the decoder and reports whether it succeeded. The error return
// is reserved for problems that abort the workflow regardless of KeepGoing.
func (p *Pipeline) decode(ctx context.Context, log *logging.Logger, rep *Report, run int) (bool, error) {
	cmd, err := decode.Command(p.Cfg, run)
	if err != nil {
		return false, err
	}
	if p.Cfg.DryRun {
		log.Info("[DRY] Would decode: %s (in %s)", cmd, cmd.Dir)
		rep.Add(Stage{Name: StageDecode, Status: StatusPlanned, Command: cmd.String()})
		return true, nil
	}

	log.Info("Decoding run %d", run)
	log.Debug("  %s (in %s)", cmd, cmd.Dir)
	res := p.Runner.Run(ctx, cmd)
	rep.Add(stageFromResult(StageDecode, res))
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if !res.OK() {
		log.Error("Decode failed: %v", res.Err)
		logStderr(log, res)
		return false, nil
	}
	for _, l := range proc.Tail(res.Stdout, stderrTail) {
		log.Debug("  %s", l)
	}
	log.Success("Decoded in %s", display.FormatDuration(res.Duration))
	return true, nil
}

// plot launches every macro at once and waits for all of them before
// returning, so relocation never races a macro still writing.
func (p *Pipeline) plot(ctx context.Context, log *logging.Logger, rep *Report, run int) (bool, error) {
	cmds, err := plot.Commands(p.Cfg, run)
	if err != nil {
		return false, err
	}
	if p.Cfg.DryRun {
		for _, c := range cmds {
			log.Info("[DRY] Would plot: %s (in %s)", c, c.Dir)
			rep.Add(Stage{Name: StagePlot + ": " + c.Name, Status: StatusPlanned, Command: c.String()})
		}
		return true, nil
	}

	log.Info("Launching %d plot macro(s)", len(cmds))
	results := proc.Group(ctx, p.Runner, cmds, p.Cfg.MaxParallel)
	for _, res := range results {
		rep.Add(stageFromResult(StagePlot+": "+res.Command.Name, res))
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	failed := proc.Failed(results)
	for _, res := range failed {
		log.Error("Plot %q failed: %v", res.Command.Name, res.Err)
		logStderr(log, res)
	}
	if len(failed) > 0 {
		return false, nil
	}
	log.Success("All plot macros finished")
	return true, nil
}

// relocate creates the run directory, moves the expected reports into it and
// copies the decoded file alongside. Missing files are warnings.
func (p *Pipeline) relocate(log *logging.Logger, rep *Report, run int, runDir string) error {
	cfg := p.Cfg
	artifacts, err := plot.Artifacts(cfg, run)
	if err != nil {
		return err
	}
	decoded, err := naming.Template{Dir: cfg.Paths.OutputDir, Name: cfg.Naming.DecodedFile}.Path(run)
	if err != nil {
		return err
	}
	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = a.Path
	}

	if cfg.DryRun {
		for _, src := range paths {
			log.Info("[DRY] Would move %s -> %s", src, runDir)
		}
		log.Info("[DRY] Would copy %s -> %s", decoded, runDir)
		rep.Add(Stage{Name: StageRelocate, Status: StatusPlanned})
		return nil
	}

	moved, missing, err := plot.Relocate(paths, runDir)
	for _, m := range moved {
		rep.Artifacts = append(rep.Artifacts, Artifact{Path: m.Dst, Size: m.Size})
	}
	if err != nil {
		rep.Add(Stage{Name: StageRelocate, Status: StatusFailed, Error: err.Error()})
		log.Error("Relocation failed: %v", err)
		return err
	}

	dst := filepath.Join(runDir, filepath.Base(decoded))
	n, err := plot.CopyFile(decoded, dst)
	switch {
	case err == nil:
		rep.Artifacts = append(rep.Artifacts, Artifact{Path: dst, Size: n})
	case os.IsNotExist(errors.Cause(err)):
		missing = append(missing, decoded)
	default:
		rep.Add(Stage{Name: StageRelocate, Status: StatusFailed, Error: err.Error()})
		log.Error("Copying decoded file failed: %v", err)
		return err
	}

	for _, m := range missing {
		log.Warn("Expected file not found: %s", m)
	}
	rep.Missing = append(rep.Missing, missing...)
	rep.Add(Stage{Name: StageRelocate, Status: StatusOK})
	log.Success("Moved %d file(s) to %s", len(rep.Artifacts), runDir)
	return nil
}
