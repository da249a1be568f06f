package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "riscv32-esp-elf", cfg.Toolchain.Prefix)
	assert.Equal(t, 16, cfg.Wrapper.ArgsArraySize)
	assert.Equal(t, "jit_wrapper", cfg.Wrapper.WrapperEntry)
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4jit.yaml")
	data := `
version: "1"
toolchain:
  path: /opt/xtools/bin
  prefix: riscv32-unknown-elf
  firmware_elf: /fw/app.elf
wrapper:
  args_array_size: 8
  wrapper_entry: jit_entry
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/xtools/bin", cfg.Toolchain.Path)
	assert.Equal(t, "riscv32-unknown-elf", cfg.Toolchain.Prefix)
	assert.Equal(t, "/fw/app.elf", cfg.Toolchain.FirmwareELF)
	assert.Equal(t, 8, cfg.Wrapper.ArgsArraySize)
	assert.Equal(t, "jit_entry", cfg.Wrapper.WrapperEntry)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4jit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wrapper: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("P4JIT_TOOLCHAIN_PREFIX", "riscv32-corev-elf")
	t.Setenv("P4JIT_ARGS_ARRAY_SIZE", "4")
	t.Setenv("P4JIT_EXTRA_CFLAGS", "-Os, -g")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "riscv32-corev-elf", cfg.Toolchain.Prefix)
	assert.Equal(t, 4, cfg.Wrapper.ArgsArraySize)
	assert.Equal(t, []string{"-Os", "-g"}, cfg.Toolchain.ExtraCFlags)
}

func TestLoadEnvInvalidInteger(t *testing.T) {
	t.Setenv("P4JIT_ARGS_ARRAY_SIZE", "many")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4jit.yaml")

	cfg := Default()
	cfg.Toolchain.Path = "/opt/riscv/bin"
	cfg.Wrapper.ArgsArraySize = 6
	require.NoError(t, Save(cfg, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Toolchain.Path, got.Toolchain.Path)
	assert.Equal(t, 6, got.Wrapper.ArgsArraySize)
}
