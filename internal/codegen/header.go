// Package codegen emits the wrapper translation unit, its companion header,
// and the build metadata for an extracted function signature.
//
// All emitters are pure functions of their inputs: rebuilding with identical
// inputs produces byte-identical text.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/p4jit/p4jit/internal/signature"
)

// HeaderFileName returns the generated header name for a source file.
func HeaderFileName(sourcePath string) string {
	return sourceStem(sourcePath) + "_gen.h"
}

// EmitHeader renders the companion declaration header for fn.
func EmitHeader(fn *signature.Function, sourcePath string) string {
	guard := headerGuard(sourcePath)

	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef %s\n", guard)
	fmt.Fprintf(&b, "#define %s\n\n", guard)
	fmt.Fprintf(&b, "// Auto-generated header for %s\n", fn.Name)
	fmt.Fprintf(&b, "// Source: %s\n\n", filepath.Base(sourcePath))
	b.WriteString("#include \"std_types.h\"\n\n")
	b.WriteString("// Function declaration\n")
	fmt.Fprintf(&b, "%s;\n\n", fn.Prototype())
	fmt.Fprintf(&b, "#endif // %s\n", guard)
	return b.String()
}

// WriteHeader writes the companion header next to the target source,
// overwriting any previous header for that source.
func WriteHeader(fn *signature.Function, sourcePath, dir string) (string, error) {
	path := filepath.Join(dir, HeaderFileName(sourcePath))
	if err := os.WriteFile(path, []byte(EmitHeader(fn, sourcePath)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write header %s: %w", path, err)
	}
	return path, nil
}

func sourceStem(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func headerGuard(sourcePath string) string {
	stem := sourceStem(sourcePath)
	var b strings.Builder
	for _, r := range strings.ToUpper(stem) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + "_GEN_H"
}
