package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/config"
	"github.com/eeemcal/beamprod/internal/logging"
	"github.com/eeemcal/beamprod/internal/proc"
	"github.com/eeemcal/beamprod/internal/runlog"
)

// Sentinel errors. ErrRunNotInLog and ErrRawFileMissing mean the requested
// input does not exist; the CLI maps them to exit status 2.
var (
	ErrRunNotInLog    = errors.New("run not found in run log")
	ErrRawFileMissing = errors.New("raw data file not found")
	ErrEmptySelection = errors.New("no runs match the selection")
	ErrStepFailed     = errors.New("step failed")
)

// stderrTail is how many stderr lines of a failed tool are logged.
const stderrTail = 20

// Pipeline binds configuration to the collaborators a workflow needs.
type Pipeline struct {
	Cfg    *config.Config
	Log    *logging.Logger
	Runner proc.Runner
	Source runlog.Source
}

// New returns a Pipeline that runs real processes with the configured step
// timeout and reads the configured run log.
func New(cfg *config.Config, log *logging.Logger) *Pipeline {
	return &Pipeline{
		Cfg:    cfg,
		Log:    log,
		Runner: proc.ExecRunner{Timeout: cfg.StepTimeout},
		Source: runlog.NewLoader(cfg),
	}
}

// MergeFilter is the run selection configured for merge.
func (p *Pipeline) MergeFilter() runlog.Filter {
	return runlog.Filter{
		Good:     p.Cfg.RunLog.GoodMarker,
		RunMin:   p.Cfg.Merge.RunMin,
		RunMax:   p.Cfg.Merge.RunMax,
		Category: p.Cfg.Merge.Category,
	}
}

// IsInputNotFound reports whether err means the requested run or its raw
// file does not exist.
func IsInputNotFound(err error) bool {
	return errors.Is(err, ErrRunNotInLog) || errors.Is(err, ErrRawFileMissing)
}

func (p *Pipeline) fetchLog(ctx context.Context) (*runlog.Log, error) {
	l, err := p.Source.Fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load run log")
	}
	return l, nil
}

func logStderr(log *logging.Logger, res proc.Result) {
	lines := proc.Tail(res.Stderr, stderrTail)
	if len(lines) == 0 {
		return
	}
	log.Error("Last %s output:", res.Command.Name)
	for _, l := range lines {
		log.Error("  %s", l)
	}
}
