package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/eeemcal/beamprod/internal/display"
	"github.com/eeemcal/beamprod/internal/logging"
	"github.com/eeemcal/beamprod/internal/proc"
)

// Status is the outcome of one stage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusPlanned Status = "planned" // Dry run: the step would have run.
)

// Stage records one step of a workflow.
type Stage struct {
	Name     string        `yaml:"name"`
	Status   Status        `yaml:"status"`
	Command  string        `yaml:"command,omitempty"`
	ExitCode *int          `yaml:"exit_code,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	Error    string        `yaml:"error,omitempty"`
}

// stageFromResult converts a finished process into a Stage.
func stageFromResult(name string, res proc.Result) Stage {
	st := Stage{
		Name:     name,
		Status:   StatusOK,
		Command:  res.Command.String(),
		Duration: res.Duration,
	}
	if res.ExitCode >= 0 {
		code := res.ExitCode
		st.ExitCode = &code
	}
	if res.Err != nil {
		st.Status = StatusFailed
		st.Error = res.Err.Error()
	}
	return st
}

// Artifact is a file the workflow produced or relocated.
type Artifact struct {
	Path string `yaml:"path"`
	Size int64  `yaml:"size"`
}

// Report accumulates the outcome of one invocation. Produce writes it to the
// run directory as the manifest.
type Report struct {
	InvocationID string        `yaml:"invocation_id"`
	Workflow     string        `yaml:"workflow"`
	Run          *int          `yaml:"run,omitempty"`
	Runs         []int         `yaml:"runs,omitempty"`
	DryRun       bool          `yaml:"dry_run,omitempty"`
	Started      time.Time     `yaml:"started"`
	Duration     time.Duration `yaml:"duration"`
	Stages       []Stage       `yaml:"stages"`
	Artifacts    []Artifact    `yaml:"artifacts,omitempty"`
	Missing      []string      `yaml:"missing,omitempty"`
}

// NewReport starts a report with a fresh invocation id.
func NewReport(workflow string, dryRun bool) *Report {
	return &Report{
		InvocationID: uuid.NewString(),
		Workflow:     workflow,
		DryRun:       dryRun,
		Started:      time.Now(),
	}
}

// Add appends a stage.
func (r *Report) Add(st Stage) { r.Stages = append(r.Stages, st) }

// Stage returns the first stage called name.
func (r *Report) Stage(name string) (Stage, bool) {
	for _, st := range r.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return Stage{}, false
}

// Failed returns the names of failed stages.
func (r *Report) Failed() []string {
	var out []string
	for _, st := range r.Stages {
		if st.Status == StatusFailed {
			out = append(out, st.Name)
		}
	}
	return out
}

// Finish stamps the total duration.
func (r *Report) Finish() { r.Duration = time.Since(r.Started) }

// WriteManifest writes the report as YAML to path.
func (r *Report) WriteManifest(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create manifest directory")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write manifest")
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", path)
	}
	return &r, nil
}

// logSummary prints the stage table and the relocated artifacts.
func logSummary(log *logging.Logger, r *Report) {
	log.Info("=== %s summary (%s) ===", r.Workflow, r.InvocationID)
	for _, st := range r.Stages {
		log.Info("%s", display.StageLine(st.Name, string(st.Status), st.Duration))
	}
	var total int64
	for _, a := range r.Artifacts {
		log.Info("  %s (%s)", filepath.Base(a.Path), display.FormatBytes(a.Size))
		total += a.Size
	}
	if len(r.Artifacts) > 0 {
		log.Info("Artifacts: %d, %s total", len(r.Artifacts), display.FormatBytes(total))
	}
	for _, m := range r.Missing {
		log.Warn("Missing: %s", m)
	}
	log.Info("Elapsed: %s", display.FormatDuration(r.Duration))
}
