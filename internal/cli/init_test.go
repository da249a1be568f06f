package cli

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p4jit/p4jit/internal/config"
)

func runInit(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewInitCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4jit.yaml")
	require.NoError(t, runInit(t, "--output", path))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Toolchain.Prefix, cfg.Toolchain.Prefix)
	assert.Equal(t, config.Default().Wrapper.ArgsArraySize, cfg.Wrapper.ArgsArraySize)
	assert.Equal(t, config.Default().Wrapper.WrapperEntry, cfg.Wrapper.WrapperEntry)
}

func TestInitRefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4jit.yaml")
	require.NoError(t, runInit(t, "--output", path))

	err := runInit(t, "--output", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, runInit(t, "--output", path, "--force"))
}
