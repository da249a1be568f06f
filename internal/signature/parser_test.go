package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p4jit/p4jit/internal/testutil"
)

const sampleSource = `
// simple.c
typedef int int32_t;
typedef unsigned int uint32_t;

static uint32_t counter = 0;

int32_t compute(int32_t a, int32_t b) {
    counter++;
    return (a + b) * counter;
}

uint32_t get_counter(void) {
    return counter;
}

float scale(float value, float gain) {
    return value * gain;
}

uint32_t process_audio(float* input, float *output, int32_t len, float gain) {
    (void)input;
    (void)output;
    (void)len;
    (void)gain;
    return 0;
}

void reset(void) {
    counter = 0;
}
`

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(testutil.NewTestLogger(t))
}

func TestExtractScalarFunction(t *testing.T) {
	fn, err := newExtractor(t).Extract(sampleSource, "compute")
	require.NoError(t, err)

	assert.Equal(t, "compute", fn.Name)
	assert.Equal(t, "int32_t", fn.ReturnType)
	assert.Equal(t, ScalarInteger, fn.ReturnCategory)
	assert.True(t, fn.HasReturn())

	require.Len(t, fn.Params, 2)
	assert.Equal(t, Param{Name: "a", Type: "int32_t", Category: ScalarInteger}, fn.Params[0])
	assert.Equal(t, Param{Name: "b", Type: "int32_t", Category: ScalarInteger}, fn.Params[1])
}

func TestExtractVoidParams(t *testing.T) {
	fn, err := newExtractor(t).Extract(sampleSource, "get_counter")
	require.NoError(t, err)

	assert.Empty(t, fn.Params)
	assert.Equal(t, "uint32_t", fn.ReturnType)
}

func TestExtractVoidReturn(t *testing.T) {
	fn, err := newExtractor(t).Extract(sampleSource, "reset")
	require.NoError(t, err)

	assert.Equal(t, "void", fn.ReturnType)
	assert.False(t, fn.HasReturn())
}

func TestExtractFloatCategories(t *testing.T) {
	fn, err := newExtractor(t).Extract(sampleSource, "scale")
	require.NoError(t, err)

	assert.Equal(t, ScalarFloat, fn.ReturnCategory)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ScalarFloat, fn.Params[0].Category)
	assert.Equal(t, ScalarFloat, fn.Params[1].Category)
}

func TestExtractMixedCategories(t *testing.T) {
	fn, err := newExtractor(t).Extract(sampleSource, "process_audio")
	require.NoError(t, err)

	require.Len(t, fn.Params, 4)
	assert.Equal(t, Pointer, fn.Params[0].Category)
	assert.Equal(t, "input", fn.Params[0].Name)
	assert.Equal(t, Pointer, fn.Params[1].Category)
	assert.Equal(t, "output", fn.Params[1].Name)
	assert.Equal(t, ScalarInteger, fn.Params[2].Category)
	assert.Equal(t, "len", fn.Params[2].Name)
	assert.Equal(t, ScalarFloat, fn.Params[3].Category)
	assert.Equal(t, "gain", fn.Params[3].Name)
}

func TestExtractArrayDecaysToPointer(t *testing.T) {
	src := `int sum(int values[], int n) { return 0; }`

	fn, err := newExtractor(t).Extract(src, "sum")
	require.NoError(t, err)

	require.Len(t, fn.Params, 2)
	assert.Equal(t, Pointer, fn.Params[0].Category)
	assert.Equal(t, "values", fn.Params[0].Name)
}

func TestExtractTypedefChain(t *testing.T) {
	src := `
typedef float real_t;
typedef real_t sample_t;

sample_t mix(sample_t a, sample_t b) { return a + b; }
`
	fn, err := newExtractor(t).Extract(src, "mix")
	require.NoError(t, err)

	assert.Equal(t, ScalarFloat, fn.ReturnCategory)
	assert.Equal(t, ScalarFloat, fn.Params[0].Category)
	// Declared type is preserved even though the category resolves deeper.
	assert.Equal(t, "sample_t", fn.Params[0].Type)
}

func TestExtractPointerTypedef(t *testing.T) {
	src := `
typedef float *buf_t;

void fill(buf_t out, int n) {}
`
	fn, err := newExtractor(t).Extract(src, "fill")
	require.NoError(t, err)

	assert.Equal(t, Pointer, fn.Params[0].Category)
}

func TestExtractTypedefFromSupportHeader(t *testing.T) {
	header := `typedef float float32_t;`
	src := `float32_t halve(float32_t x) { return x / 2; }`

	ex := newExtractor(t)
	ex.AddHeaderSource(header)

	fn, err := ex.Extract(src, "halve")
	require.NoError(t, err)
	assert.Equal(t, ScalarFloat, fn.Params[0].Category)
	assert.Equal(t, ScalarFloat, fn.ReturnCategory)
}

func TestExtractNotFound(t *testing.T) {
	_, err := newExtractor(t).Extract(sampleSource, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "missing")
}

func TestExtractCallSitesAreNotDeclarations(t *testing.T) {
	src := `
int helper(int x) { return x; }

int caller(int y) {
    return helper(y);
}
`
	fn, err := newExtractor(t).Extract(src, "helper")
	require.NoError(t, err)
	assert.Equal(t, "int", fn.ReturnType)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "x", fn.Params[0].Name)
}

func TestExtractUnsupported(t *testing.T) {
	tests := []struct {
		name string
		src  string
		fn   string
	}{
		{
			name: "variadic",
			src:  `int log_fmt(const char *fmt, ...);`,
			fn:   "log_fmt",
		},
		{
			name: "function pointer parameter",
			src:  `void apply(int (*op)(int), int x);`,
			fn:   "apply",
		},
		{
			name: "struct by value",
			src:  `int area(struct rect r);`,
			fn:   "area",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newExtractor(t).Extract(tt.src, tt.fn)
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestExtractRejectsWideScalars(t *testing.T) {
	tests := []struct {
		name string
		src  string
		fn   string
	}{
		{
			name: "double parameter",
			src:  `double mul(double a, int32_t b);`,
			fn:   "mul",
		},
		{
			name: "double return",
			src:  `double average(float *samples, int n);`,
			fn:   "average",
		},
		{
			name: "int64_t parameter",
			src:  `int shift(int64_t value);`,
			fn:   "shift",
		},
		{
			name: "uint64_t return",
			src:  `uint64_t ticks(void);`,
			fn:   "ticks",
		},
		{
			name: "long long parameter",
			src:  `int wide(long long v);`,
			fn:   "wide",
		},
		{
			name: "typedef resolving to double",
			src:  "typedef double real_t;\nreal_t half(real_t x);",
			fn:   "half",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newExtractor(t)
			ex.AddHeaderSource("typedef int int32_t;\ntypedef long long int64_t;\ntypedef unsigned long long uint64_t;")

			_, err := ex.Extract(tt.src, tt.fn)
			require.ErrorIs(t, err, ErrUnsupported)
			assert.ErrorContains(t, err, "32-bit slot")
		})
	}
}

func TestExtractPointerToWideScalarIsAccepted(t *testing.T) {
	// The slot carries the address, so the pointee width does not matter.
	src := `void accumulate(double *acc, float x) {}`

	fn, err := newExtractor(t).Extract(src, "accumulate")
	require.NoError(t, err)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, Pointer, fn.Params[0].Category)
	assert.Equal(t, "double *", fn.Params[0].Type)
}

func TestExtractPlainLongIsAccepted(t *testing.T) {
	// On the rv32 ilp32 ABI a long is 32 bits wide.
	fn, err := newExtractor(t).Extract(`long clamp(long v);`, "clamp")
	require.NoError(t, err)
	assert.Equal(t, ScalarInteger, fn.Params[0].Category)
}

func TestExtractPrototypeOnly(t *testing.T) {
	src := `float InterpolateWaveHermite(float* table, int32_t index_integral, float index_fractional);`

	ex := newExtractor(t)
	ex.AddHeaderSource("typedef int int32_t;")

	fn, err := ex.Extract(src, "InterpolateWaveHermite")
	require.NoError(t, err)
	require.Len(t, fn.Params, 3)
	assert.Equal(t, Pointer, fn.Params[0].Category)
	assert.Equal(t, ScalarInteger, fn.Params[1].Category)
	assert.Equal(t, ScalarFloat, fn.Params[2].Category)
}

func TestExtractToleratesFormatting(t *testing.T) {
	src := "int32_t\n  add ( int32_t a ,\n        int32_t b )\n{ return a + b; }"

	ex := newExtractor(t)
	ex.AddHeaderSource("typedef int int32_t;")

	fn, err := ex.Extract(src, "add")
	require.NoError(t, err)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)
}

func TestPrototypeRendering(t *testing.T) {
	fn := &Function{
		Name:       "process_audio",
		ReturnType: "uint32_t",
		Params: []Param{
			{Name: "input", Type: "float *", Category: Pointer},
			{Name: "len", Type: "int32_t", Category: ScalarInteger},
		},
	}
	assert.Equal(t, "uint32_t process_audio(float *input, int32_t len)", fn.Prototype())

	empty := &Function{Name: "reset", ReturnType: "void"}
	assert.Equal(t, "void reset(void)", empty.Prototype())
}
