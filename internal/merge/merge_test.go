package merge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eeemcal/beamprod/internal/proc"
)

type recordingRunner struct {
	cmds []proc.Command
	err  error
}

func (r *recordingRunner) Run(_ context.Context, cmd proc.Command) proc.Result {
	r.cmds = append(r.cmds, cmd)
	return proc.Result{Command: cmd, Err: r.err}
}

func TestCommand_OutputFirst(t *testing.T) {
	cmd := Command("/opt/homebrew/bin/hadd", "beam_energy_1gev.root", []string{"prod/run056.root", "prod/run060.root"}, false)

	assert.Equal(t, "/opt/homebrew/bin/hadd", cmd.Path)
	assert.Equal(t, []string{"beam_energy_1gev.root", "prod/run056.root", "prod/run060.root"}, cmd.Args)
}

func TestCommand_Force(t *testing.T) {
	cmd := Command("hadd", "out.root", []string{"a.root"}, true)
	assert.Equal(t, []string{"-f", "out.root", "a.root"}, cmd.Args)
}

func TestRun(t *testing.T) {
	r := &recordingRunner{}
	_, err := Run(context.Background(), r, "hadd", "out.root", []string{"a.root", "b.root"}, false)
	require.NoError(t, err)
	require.Len(t, r.cmds, 1)
	assert.Equal(t, []string{"out.root", "a.root", "b.root"}, r.cmds[0].Args)
}

func TestRun_PropagatesFailure(t *testing.T) {
	r := &recordingRunner{err: proc.ErrExit}
	_, err := Run(context.Background(), r, "hadd", "out.root", []string{"a.root"}, false)
	assert.True(t, errors.Is(err, proc.ErrExit))
}

func TestRun_NoInputs(t *testing.T) {
	r := &recordingRunner{}
	_, err := Run(context.Background(), r, "hadd", "out.root", nil, false)
	assert.True(t, errors.Is(err, ErrNoInputs))
	assert.Empty(t, r.cmds, "hadd must not be launched without inputs")
}

func TestMissingInputs(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "run056.root")
	require.NoError(t, os.WriteFile(present, nil, 0o644))
	absent := filepath.Join(dir, "run057.root")

	assert.Equal(t, []string{absent}, MissingInputs([]string{present, absent}))
	assert.Nil(t, MissingInputs([]string{present}))
}
