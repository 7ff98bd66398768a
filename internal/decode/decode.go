// Package decode builds the reconstruction step: the h2g decoder converts a
// raw .h2g readout file into a ROOT file.
package decode

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/config"
	"github.com/eeemcal/beamprod/internal/proc"
)

// Environment variables read by the decoder.
const (
	EnvDataPath   = "DATA_PATH"
	EnvOutputPath = "OUTPUT_PATH"
)

// Executable returns the decoder path. A relative tool name resolves inside
// the decoder installation directory.
func Executable(cfg *config.Config) (string, error) {
	exe := cfg.Tools.Decoder
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(cfg.Paths.DecoderDir, exe)
	}
	abs, err := filepath.Abs(exe)
	if err != nil {
		return "", errors.Wrap(err, "resolve decoder path")
	}
	return abs, nil
}

// Command builds the decoder invocation for run: the run number is the only
// argument, the data and output roots travel in the environment, and the
// process runs inside the decoder directory.
func Command(cfg *config.Config, run int) (proc.Command, error) {
	exe, err := Executable(cfg)
	if err != nil {
		return proc.Command{}, err
	}
	dataDir, err := filepath.Abs(cfg.Paths.DataDir)
	if err != nil {
		return proc.Command{}, errors.Wrap(err, "resolve data dir")
	}
	outDir, err := filepath.Abs(cfg.Paths.OutputDir)
	if err != nil {
		return proc.Command{}, errors.Wrap(err, "resolve output dir")
	}

	env := []string{EnvDataPath + "=" + dataDir, EnvOutputPath + "=" + outDir}
	if cfg.DecodeInheritEnv {
		env = append(os.Environ(), env...)
	}

	return proc.Command{
		Name: "decode",
		Path: exe,
		Args: []string{strconv.Itoa(run)},
		Env:  env,
		Dir:  filepath.Dir(exe),
	}, nil
}
