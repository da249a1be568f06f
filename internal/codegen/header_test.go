package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p4jit/p4jit/internal/signature"
)

func TestEmitHeader(t *testing.T) {
	fn := &signature.Function{
		Name:       "process_audio",
		ReturnType: "uint32_t",
		Params: []signature.Param{
			{Name: "input", Type: "float *", Category: signature.Pointer},
			{Name: "gain", Type: "float", Category: signature.ScalarFloat},
		},
	}

	src := EmitHeader(fn, "/work/source/audio_dsp.c")

	assert.Contains(t, src, "#ifndef AUDIO_DSP_GEN_H")
	assert.Contains(t, src, "#define AUDIO_DSP_GEN_H")
	assert.Contains(t, src, "// Auto-generated header for process_audio")
	assert.Contains(t, src, "// Source: audio_dsp.c")
	assert.Contains(t, src, `#include "std_types.h"`)
	assert.Contains(t, src, "uint32_t process_audio(float *input, float gain);")
	assert.Contains(t, src, "#endif // AUDIO_DSP_GEN_H")
}

func TestEmitHeaderGuardSanitized(t *testing.T) {
	fn := &signature.Function{Name: "f", ReturnType: "void"}
	src := EmitHeader(fn, "my-func.2.c")
	assert.Contains(t, src, "#ifndef MY_FUNC_2_GEN_H")
}

func TestWriteHeaderOverwrites(t *testing.T) {
	dir := t.TempDir()
	fn := &signature.Function{Name: "f", ReturnType: "void"}

	path, err := WriteHeader(fn, "f.c", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "f_gen.h"), path)

	// A second build for the same source replaces the header in place.
	fn2 := &signature.Function{Name: "f", ReturnType: "int"}
	path2, err := WriteHeader(fn2, "f.c", dir)
	require.NoError(t, err)
	assert.Equal(t, path, path2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "int f(void);")
}
