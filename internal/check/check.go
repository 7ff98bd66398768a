// Package check provides system diagnostics (the check command) and the
// pre-pipeline dependency validation (CheckDeps) for root, hadd and the h2g
// decoder.
package check

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/config"
	"github.com/eeemcal/beamprod/internal/decode"
	"github.com/eeemcal/beamprod/internal/runlog"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrRootNotFound    = errors.New("root not found")
	ErrHaddNotFound    = errors.New("hadd not found")
	ErrDecoderNotFound = errors.New("h2g decoder not found")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Needs selects which tools CheckDeps requires.
type Needs struct {
	Root    bool
	Hadd    bool
	Decoder bool
}

// CheckDeps verifies the executables a command is about to launch.
func CheckDeps(cfg *config.Config, n Needs) error {
	if n.Root {
		if _, err := exec.LookPath(cfg.Tools.Root); err != nil {
			return errors.Wrapf(ErrRootNotFound, "%s", cfg.Tools.Root)
		}
	}
	if n.Hadd {
		if _, err := exec.LookPath(cfg.Tools.Hadd); err != nil {
			return errors.Wrapf(ErrHaddNotFound, "%s", cfg.Tools.Hadd)
		}
	}
	if n.Decoder {
		exe, err := decode.Executable(cfg)
		if err != nil {
			return err
		}
		if !isExecutable(exe) {
			return errors.Wrapf(ErrDecoderNotFound, "%s", exe)
		}
	}
	return nil
}

// RunCheck runs the interactive check flow: tools, directories, and the run
// log. It logs every finding and reports whether everything passed.
func RunCheck(ctx context.Context, cfg *config.Config, src runlog.Source, log Logger) bool {
	log.Info("=== System Check ===")

	ok := true
	ok = checkTool(log, "root", cfg.Tools.Root, "--version") && ok
	ok = checkTool(log, "hadd", cfg.Tools.Hadd, "") && ok
	ok = checkDecoder(cfg, log) && ok

	for _, d := range []struct{ label, path string }{
		{"Data dir", cfg.Paths.DataDir},
		{"Output dir", cfg.Paths.OutputDir},
		{"Macro dir", cfg.Paths.MacroDir},
	} {
		ok = checkDir(log, d.label, d.path) && ok
	}
	for _, p := range cfg.Plots {
		path := p.Macro
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Paths.MacroDir, p.Macro)
		}
		if _, err := os.Stat(path); err != nil {
			log.Warn("Macro missing: %s", path)
			ok = false
		}
	}

	ok = checkRunLog(ctx, src, log) && ok
	return ok
}

// checkTool verifies an executable is on PATH and logs the first line of its
// version output when versionArg is given.
func checkTool(log Logger, label, tool, versionArg string) bool {
	path, err := exec.LookPath(tool)
	if err != nil {
		log.Error("%s not found (%s)", label, tool)
		return false
	}
	if versionArg == "" {
		log.Success("%s: %s", label, path)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, versionArg).CombinedOutput()
	if err != nil {
		log.Warn("%s found but %s failed: %v", label, versionArg, err)
		return true
	}
	first := strings.TrimSpace(string(out))
	if idx := strings.Index(first, "\n"); idx > 0 {
		first = first[:idx]
	}
	log.Success("%s: %s", label, first)
	return true
}

func checkDecoder(cfg *config.Config, log Logger) bool {
	exe, err := decode.Executable(cfg)
	if err != nil || !isExecutable(exe) {
		log.Error("decoder not found: %s", exe)
		return false
	}
	log.Success("decoder: %s", exe)
	return true
}

func checkDir(log Logger, label, path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		log.Warn("%s missing: %s", label, path)
		return false
	}
	log.Success("%s: %s", label, path)
	return true
}

func checkRunLog(ctx context.Context, src runlog.Source, log Logger) bool {
	l, err := src.Fetch(ctx)
	if err != nil {
		log.Error("Run log unavailable: %v", err)
		return false
	}
	log.Success("Run log: %d rows, categories %v", len(l.Entries), l.Categories())
	return true
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	return fi.Mode().Perm()&0o111 != 0
}
