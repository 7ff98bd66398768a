package proc

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// waitDelay bounds how long Run waits for output pipes after the process was
// killed; grandchildren may keep them open.
const waitDelay = 2 * time.Second

// Command describes one external process.
type Command struct {
	Name string   // Label for logs and reports.
	Path string   // Executable; bare names are looked up on PATH.
	Args []string // Arguments after the executable.
	Env  []string // nil inherits the parent environment.
	Dir  string   // Working directory; empty = current.
}

// String renders the command line for logs and dry runs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Path)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t'\"()") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result holds the outcome of a single invocation.
type Result struct {
	Command  Command
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the process never started or was killed.
	Duration time.Duration
	Err      error
}

// OK reports whether the process ran and exited with status 0.
func (r Result) OK() bool { return r.Err == nil }

// Runner executes commands. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout bounds each command; 0 waits forever.
	Timeout time.Duration
}

// Run starts cmd, waits for it, and classifies the outcome. Context
// cancellation kills the process.
func (r ExecRunner) Run(ctx context.Context, cmd Command) Result {
	res := Result{Command: cmd, ExitCode: -1}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay
	if cmd.Env != nil {
		c.Env = cmd.Env
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
	}
	res.Err = classify(ctx, runCtx, cmd, res.ExitCode, err)
	return res
}

func classify(parent, run context.Context, cmd Command, code int, err error) error {
	if err == nil {
		return nil
	}
	if parent.Err() != nil {
		return errors.Wrapf(parent.Err(), "%s interrupted", cmd.Name)
	}
	if run.Err() == context.DeadlineExceeded {
		return errors.Wrapf(ErrTimeout, "%s", cmd.Name)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.Wrapf(ErrExit, "%s exited with status %d", cmd.Name, code)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(ErrNotFound, "%s: %s", cmd.Name, cmd.Path)
	}
	return errors.Wrapf(err, "%s", cmd.Name)
}

// Tail returns the last n non-empty lines of s.
func Tail(s string, n int) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
