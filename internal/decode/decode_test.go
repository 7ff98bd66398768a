package decode

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eeemcal/beamprod/internal/config"
)

func TestCommand(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.DecoderDir = "/opt/h2g_decode/build"
	cfg.Paths.DataDir = "/data/beam"
	cfg.Paths.OutputDir = "/data/prod"

	cmd, err := Command(&cfg, 56)
	require.NoError(t, err)

	assert.Equal(t, "/opt/h2g_decode/build/h2g_run", cmd.Path)
	assert.Equal(t, []string{"56"}, cmd.Args)
	assert.Equal(t, "/opt/h2g_decode/build", cmd.Dir)
	assert.Equal(t, []string{"DATA_PATH=/data/beam", "OUTPUT_PATH=/data/prod"}, cmd.Env)
}

func TestCommand_AbsoluteDecoderAndRelativeDirs(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tools.Decoder = "/usr/local/bin/h2g_run"
	cfg.Paths.DataDir = "raw"

	cmd, err := Command(&cfg, 7)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/h2g_run", cmd.Path)
	assert.Equal(t, "/usr/local/bin", cmd.Dir)
	wantData, _ := filepath.Abs("raw")
	assert.Contains(t, cmd.Env, "DATA_PATH="+wantData)
	assert.Equal(t, []string{"7"}, cmd.Args, "run number is not zero-padded")
}

func TestCommand_InheritEnv(t *testing.T) {
	t.Setenv("BEAMPROD_TEST_MARKER", "1")
	cfg := config.DefaultConfig()
	cfg.DecodeInheritEnv = true

	cmd, err := Command(&cfg, 56)
	require.NoError(t, err)
	assert.Contains(t, cmd.Env, "BEAMPROD_TEST_MARKER=1")
	assert.Greater(t, len(cmd.Env), 2)
}
