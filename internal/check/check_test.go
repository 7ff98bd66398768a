package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/eeemcal/beamprod/internal/config"
	"github.com/eeemcal/beamprod/internal/runlog"
)

type recordLogger struct {
	lines []string
}

func (r *recordLogger) add(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}
func (r *recordLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *recordLogger) Success(f string, a ...interface{}) { r.add("OK", f, a...) }
func (r *recordLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *recordLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }

type stubSource struct {
	log *runlog.Log
	err error
}

func (s stubSource) Fetch(context.Context) (*runlog.Log, error) { return s.log, s.err }

// writeExec creates an executable shell script named name in dir.
func writeExec(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho fake 1.0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckDeps(t *testing.T) {
	bin := t.TempDir()
	root := writeExec(t, bin, "root")
	hadd := writeExec(t, bin, "hadd")
	decDir := t.TempDir()
	writeExec(t, decDir, "h2g_run")

	base := func() config.Config {
		cfg := config.DefaultConfig()
		cfg.Tools.Root = root
		cfg.Tools.Hadd = hadd
		cfg.Paths.DecoderDir = decDir
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		needs  Needs
		want   error
	}{
		{"all present", func(*config.Config) {}, Needs{Root: true, Hadd: true, Decoder: true}, nil},
		{"root missing", func(c *config.Config) { c.Tools.Root = filepath.Join(bin, "nope") }, Needs{Root: true}, ErrRootNotFound},
		{"hadd missing", func(c *config.Config) { c.Tools.Hadd = "definitely-not-hadd-xyz" }, Needs{Hadd: true}, ErrHaddNotFound},
		{"decoder missing", func(c *config.Config) { c.Paths.DecoderDir = t.TempDir() }, Needs{Decoder: true}, ErrDecoderNotFound},
		{"decoder not needed", func(c *config.Config) { c.Paths.DecoderDir = t.TempDir() }, Needs{Root: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := CheckDeps(&cfg, tt.needs)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("CheckDeps() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckDeps() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := writeExec(t, dir, "tool")
	plain := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !isExecutable(exe) {
		t.Error("script with 0755 should be executable")
	}
	if isExecutable(plain) {
		t.Error("0644 file should not be executable")
	}
	if isExecutable(dir) {
		t.Error("directory should not count as executable")
	}
	if isExecutable(filepath.Join(dir, "absent")) {
		t.Error("missing file should not be executable")
	}
}

func TestRunCheck(t *testing.T) {
	bin := t.TempDir()
	decDir := t.TempDir()
	macroDir := t.TempDir()
	writeExec(t, decDir, "h2g_run")

	cfg := config.DefaultConfig()
	cfg.Tools.Root = writeExec(t, bin, "root")
	cfg.Tools.Hadd = writeExec(t, bin, "hadd")
	cfg.Paths.DecoderDir = decDir
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.MacroDir = macroDir
	for _, p := range cfg.Plots {
		if err := os.WriteFile(filepath.Join(macroDir, p.Macro), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	src := stubSource{log: &runlog.Log{Entries: []runlog.Entry{{Run: 56, RunValid: true, Quality: "GOOD", Category: "4"}}}}

	var log recordLogger
	if !RunCheck(context.Background(), &cfg, src, &log) {
		t.Fatalf("RunCheck() = false, log:\n%v", log.lines)
	}

	log = recordLogger{}
	src.err = errors.New("offline")
	if RunCheck(context.Background(), &cfg, src, &log) {
		t.Error("RunCheck() = true with unreachable run log")
	}
}
