package config

// This file binds CLI flags. Values land in a Flags struct and are copied into
// Config only for flags the operator actually set, so file and environment
// settings hold unless overridden on the command line.

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Flags holds raw flag values captured by pflag before they are applied.
type Flags struct {
	ConfigFile string
	RunLog     string
	Verbose    bool
	Color      ColorMode
	NoColor    bool
	LogFile    string
	DryRun     bool

	// produce
	Run        int
	SkipDecode bool
	KeepGoing  bool
	Timeout    time.Duration

	// merge / runs
	RunMin   int
	RunMax   int
	Category string
	Output   string
	Force    bool
}

// BindGlobal registers the flags shared by every subcommand.
func (f *Flags) BindGlobal(fs *pflag.FlagSet) {
	f.Color = ColorAuto
	fs.StringVar(&f.ConfigFile, "config", DefaultFile, "YAML config file (missing file = defaults)")
	fs.StringVar(&f.RunLog, "runlog", "", "Run log location (http(s) URL or local CSV)")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
	fs.Var(&colorModeValue{&f.Color}, "color", "Color output: auto | always | never")
	fs.BoolVar(&f.NoColor, "no-color", false, "Disable colored logs")
	fs.StringVarP(&f.LogFile, "log", "l", "", "Append logs to file")
	fs.BoolVarP(&f.DryRun, "dry-run", "d", false, "Print the steps; launch nothing, write nothing")
}

// BindProduce registers the production flags.
func (f *Flags) BindProduce(fs *pflag.FlagSet) {
	fs.IntVarP(&f.Run, "run", "r", 0, "Run number to process")
	fs.BoolVar(&f.SkipDecode, "skip-decode", false, "Skip the decoding step")
	fs.BoolVar(&f.KeepGoing, "keep-going", false, "Continue after a failed decode or plot step")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Per-step timeout (0 = none)")
}

// BindSelection registers the run selection flags used by merge and runs.
func (f *Flags) BindSelection(fs *pflag.FlagSet) {
	fs.IntVar(&f.RunMin, "min", 0, "Lowest run number (inclusive)")
	fs.IntVar(&f.RunMax, "max", 0, "Highest run number (inclusive)")
	fs.StringVar(&f.Category, "category", "", "Beam energy category to select")
}

// BindMerge registers the merge-only flags.
func (f *Flags) BindMerge(fs *pflag.FlagSet) {
	f.BindSelection(fs)
	fs.StringVarP(&f.Output, "output", "o", "", "Merged output file")
	fs.BoolVarP(&f.Force, "force", "f", false, "Overwrite an existing merged output")
}

// Apply copies every flag the operator set into cfg. Flags not present in fs
// (because the subcommand doesn't define them) are ignored.
func (f *Flags) Apply(cfg *Config, fs *pflag.FlagSet) {
	changed := func(name string) bool {
		fl := fs.Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("runlog") {
		cfg.RunLog.Location = strings.TrimSpace(f.RunLog)
	}
	if changed("verbose") {
		cfg.Verbose = f.Verbose
	}
	if changed("color") {
		cfg.ColorMode = f.Color
	}
	if changed("no-color") && f.NoColor {
		cfg.ColorMode = ColorNever
	}
	if changed("log") {
		cfg.LogFile = f.LogFile
	}
	if changed("dry-run") {
		cfg.DryRun = f.DryRun
	}
	if changed("skip-decode") {
		cfg.SkipDecode = f.SkipDecode
	}
	if changed("keep-going") {
		cfg.KeepGoing = f.KeepGoing
	}
	if changed("timeout") {
		cfg.StepTimeout = f.Timeout
	}
	if changed("min") {
		cfg.Merge.RunMin = f.RunMin
	}
	if changed("max") {
		cfg.Merge.RunMax = f.RunMax
	}
	if changed("category") {
		cfg.Merge.Category = f.Category
	}
	if changed("output") {
		cfg.Merge.Output = f.Output
	}
	if changed("force") {
		cfg.Merge.Force = f.Force
	}
}

// colorModeValue adapts ColorMode to pflag.Value.
type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return errors.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}
