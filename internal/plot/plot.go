// Package plot builds the ROOT macro invocations for a run and moves the
// reports they write into the per-run directory.
package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/config"
	"github.com/eeemcal/beamprod/internal/naming"
	"github.com/eeemcal/beamprod/internal/proc"
)

// EnvOutputPath tells the macros where the decoded ROOT files live.
const EnvOutputPath = "OUTPUT_PATH"

// rootFlags: quit when done, batch mode, exit on exceptions, no logo.
var rootFlags = []string{"-q", "-b", "-x", "-l"}

// Artifact is one report a macro is expected to write.
type Artifact struct {
	Macro string // PlotMacro.Name
	Path  string
}

// Commands returns one root invocation per configured macro, each calling
// macro(run) from inside the macro directory.
func Commands(cfg *config.Config, run int) ([]proc.Command, error) {
	outDir, err := filepath.Abs(cfg.Paths.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve output dir")
	}
	env := append(os.Environ(), EnvOutputPath+"="+outDir)

	cmds := make([]proc.Command, 0, len(cfg.Plots))
	for _, p := range cfg.Plots {
		args := append(append([]string{}, rootFlags...), fmt.Sprintf("%s(%d)", p.Macro, run))
		name := p.Name
		if name == "" {
			name = p.Macro
		}
		cmds = append(cmds, proc.Command{
			Name: name,
			Path: cfg.Tools.Root,
			Args: args,
			Env:  env,
			Dir:  cfg.Paths.MacroDir,
		})
	}
	return cmds, nil
}

// OutputDir is where the macros write their reports.
func OutputDir(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Paths.PlotOutputDir) {
		return cfg.Paths.PlotOutputDir
	}
	return filepath.Join(cfg.Paths.MacroDir, cfg.Paths.PlotOutputDir)
}

// Artifacts lists every report the configured macros write for run, derived
// from their artifact templates.
func Artifacts(cfg *config.Config, run int) ([]Artifact, error) {
	dir := OutputDir(cfg)
	var out []Artifact
	for _, p := range cfg.Plots {
		for _, tmpl := range p.Artifacts {
			path, err := naming.Template{Dir: dir, Name: tmpl}.Path(run)
			if err != nil {
				return nil, err
			}
			out = append(out, Artifact{Macro: p.Name, Path: path})
		}
	}
	return out, nil
}
