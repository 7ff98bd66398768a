// Package config holds runtime configuration: defaults, YAML file loading,
// environment and CLI overrides, and validation. Defaults match the beam-test
// operator scripts the tool replaces.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultRunLogURL is the CSV export of the DESY 2025 run log spreadsheet.
const DefaultRunLogURL = "https://docs.google.com/spreadsheets/d/100vYwQmm6yWk3cUcB_WvoXAw8JAoOyTnIgRnm21yAfs/export?format=csv&gid=526039506"

// DefaultFile is the config file read when --config is not given.
const DefaultFile = "beamprod.yaml"

// RunLogConfig locates the run log and names the columns the filters use.
type RunLogConfig struct {
	Location       string        `yaml:"location"` // http(s) URL or local CSV path.
	RunColumn      string        `yaml:"run_column"`
	QualityColumn  string        `yaml:"quality_column"`
	CategoryColumn string        `yaml:"category_column"`
	GoodMarker     string        `yaml:"good_marker"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
}

// PathsConfig holds the directory roots shared by every step.
type PathsConfig struct {
	DataDir       string `yaml:"data_dir"`        // Raw .h2g files (decoder DATA_PATH).
	OutputDir     string `yaml:"output_dir"`      // Decoded .root files (decoder OUTPUT_PATH).
	WorkDir       string `yaml:"work_dir"`        // Per-run report directories.
	DecoderDir    string `yaml:"decoder_dir"`     // Decoder installation (also its working dir).
	MacroDir      string `yaml:"macro_dir"`       // ROOT macros; plot processes run here.
	PlotOutputDir string `yaml:"plot_output_dir"` // Where macros write PDFs, relative to MacroDir unless absolute.
}

// NamingConfig holds file name templates. {run} expands to the zero-padded
// run token, {num} to the plain decimal run number.
type NamingConfig struct {
	RawFile     string `yaml:"raw_file"`
	DecodedFile string `yaml:"decoded_file"`
	MergeInput  string `yaml:"merge_input"`
	RunDir      string `yaml:"run_dir"`
	Manifest    string `yaml:"manifest"`
}

// ToolsConfig names the external executables.
type ToolsConfig struct {
	Decoder string `yaml:"decoder"` // Relative names resolve inside DecoderDir.
	Root    string `yaml:"root"`
	Hadd    string `yaml:"hadd"`
}

// PlotMacro is one ROOT macro launched per run, with the artifacts it writes.
type PlotMacro struct {
	Name      string   `yaml:"name"`
	Macro     string   `yaml:"macro"`     // e.g. "single_crystal_ADC_sum.cxx"; called as macro(<run>).
	Artifacts []string `yaml:"artifacts"` // Templates relative to PlotOutputDir.
}

// MergeConfig is the run selection and output of the merge command.
type MergeConfig struct {
	RunMin   int    `yaml:"run_min"`
	RunMax   int    `yaml:"run_max"`
	Category string `yaml:"category"` // Beam energy column value.
	Output   string `yaml:"output"`
	Force    bool   `yaml:"force"` // Pass -f so hadd overwrites an existing output.
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [Config.LoadFile], [Config.ApplyEnv], and finally the CLI overrides in
// [Flags.Apply], before being passed (by pointer) to packages that need it.
type Config struct {
	RunLog RunLogConfig `yaml:"runlog"`
	Paths  PathsConfig  `yaml:"paths"`
	Naming NamingConfig `yaml:"naming"`
	Tools  ToolsConfig  `yaml:"tools"`
	Plots  []PlotMacro  `yaml:"plots"`
	Merge  MergeConfig  `yaml:"merge"`

	// Decoder environment: false passes only DATA_PATH and OUTPUT_PATH.
	DecodeInheritEnv bool `yaml:"decode_inherit_env"`

	// Behavior.
	SkipDecode  bool          `yaml:"-"`
	KeepGoing   bool          `yaml:"keep_going"`   // Continue after a failed decode/plot step.
	DryRun      bool          `yaml:"-"`
	StepTimeout time.Duration `yaml:"step_timeout"` // 0 = wait forever.
	MaxParallel int           `yaml:"max_parallel"` // Plot processes at once; 0 = all.

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"`
	LogFile   string    `yaml:"log_file"`
}

// DefaultConfig returns a Config whose values match the original operator
// scripts. Absolute per-machine paths are replaced by relative defaults.
func DefaultConfig() Config {
	return Config{
		RunLog: RunLogConfig{
			Location:       DefaultRunLogURL,
			RunColumn:      "Run Number",
			QualityColumn:  "Good",
			CategoryColumn: "Beam Energy",
			GoodMarker:     "GOOD",
			FetchTimeout:   30 * time.Second,
		},
		Paths: PathsConfig{
			DataDir:       "data/beam",
			OutputDir:     "prod",
			WorkDir:       "work",
			DecoderDir:    "h2g_decode/build",
			MacroDir:      ".",
			PlotOutputDir: "output",
		},
		Naming: NamingConfig{
			RawFile:     "Run{run}.h2g",
			DecodedFile: "Run{run}.root",
			MergeInput:  "run{run}.root",
			RunDir:      "run{num}",
			Manifest:    "manifest.yaml",
		},
		Tools: ToolsConfig{
			Decoder: "h2g_run",
			Root:    "root",
			Hadd:    "hadd",
		},
		Plots: []PlotMacro{
			{
				Name:  "ADC sum spectra",
				Macro: "single_crystal_ADC_sum.cxx",
				Artifacts: []string{
					"Run{run}_adc_single_sum.pdf",
					"Run{run}_adc_full_sum.pdf",
				},
			},
			{
				Name:      "ADC/TOT correlation",
				Macro:     "adc_tot_correlation.cxx",
				Artifacts: []string{"adc_tot_correlation_run{run}.pdf"},
			},
		},
		Merge: MergeConfig{
			RunMin:   56,
			RunMax:   107,
			Category: "4",
			Output:   "beam_energy_1gev.root",
		},
		ColorMode: ColorAuto,
	}
}

// LoadFile merges the YAML file at path over c. A missing file leaves c
// unchanged; any other read or parse failure is returned.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

// Environment variables recognised by [Config.ApplyEnv].
const (
	EnvRunLog     = "BEAMPROD_RUNLOG"
	EnvDataPath   = "BEAMPROD_DATA_PATH"
	EnvOutput     = "BEAMPROD_OUTPUT_PATH"
	EnvWorkDir    = "BEAMPROD_WORK_DIR"
	EnvDecoderDir = "BEAMPROD_DECODER_DIR"
)

// ApplyEnv overrides paths from BEAMPROD_* variables when they are set.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		EnvRunLog:     &c.RunLog.Location,
		EnvDataPath:   &c.Paths.DataDir,
		EnvOutput:     &c.Paths.OutputDir,
		EnvWorkDir:    &c.Paths.WorkDir,
		EnvDecoderDir: &c.Paths.DecoderDir,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
}

// Load builds the effective file-level configuration: defaults, then the
// YAML file, then the environment.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	cfg.normalizePaths()
	return cfg, nil
}

func (c *Config) normalizePaths() {
	for _, p := range []*string{
		&c.Paths.DataDir, &c.Paths.OutputDir, &c.Paths.WorkDir,
		&c.Paths.DecoderDir, &c.Paths.MacroDir, &c.Paths.PlotOutputDir,
	} {
		*p = NormalizeDirArg(*p)
	}
}

// Validate checks enum fields, the merge range, templates, and limits.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.RunLog.Location == "" {
		return errors.New("run log location must not be empty")
	}
	if c.RunLog.RunColumn == "" || c.RunLog.QualityColumn == "" || c.RunLog.CategoryColumn == "" {
		return errors.New("run log column names must not be empty")
	}
	if c.Merge.RunMin < 0 || c.Merge.RunMax < 0 {
		return errors.New("merge run range must not be negative")
	}
	if c.Merge.RunMin > c.Merge.RunMax {
		return errors.Errorf("invalid merge run range [%d, %d]", c.Merge.RunMin, c.Merge.RunMax)
	}
	if c.Merge.Output == "" {
		return errors.New("merge output must not be empty")
	}

	for name, tmpl := range map[string]string{
		"raw_file":     c.Naming.RawFile,
		"decoded_file": c.Naming.DecodedFile,
		"merge_input":  c.Naming.MergeInput,
		"run_dir":      c.Naming.RunDir,
	} {
		if !hasRunPlaceholder(tmpl) {
			return errors.Errorf("naming.%s %q needs a {run} or {num} placeholder", name, tmpl)
		}
	}

	if len(c.Plots) == 0 {
		return errors.New("at least one plot macro is required")
	}
	for i, p := range c.Plots {
		if p.Macro == "" {
			return errors.Errorf("plots[%d]: macro must not be empty", i)
		}
	}

	if c.StepTimeout < 0 {
		return errors.New("step timeout must not be negative")
	}
	if c.MaxParallel < 0 {
		return errors.New("max parallel must not be negative")
	}
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

func hasRunPlaceholder(tmpl string) bool {
	return strings.Contains(tmpl, "{run}") || strings.Contains(tmpl, "{num}")
}
