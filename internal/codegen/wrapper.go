package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/p4jit/p4jit/internal/signature"
)

// WrapperSpec carries the configuration the wrapper emitter needs.
type WrapperSpec struct {
	// Entry is the fixed symbol name of the generated entry function.
	Entry string
	// ArgAddress is the device address of the argument slot array.
	ArgAddress uint32
	// SlotCount is the total number of slots, return slot included.
	SlotCount int
}

// resultVar is the local holding the call result before it is written back.
// Prefixed to avoid shadowing a parameter of the target function.
const resultVar = "jit_result"

// EmitWrapper renders the adapter translation unit for fn.
//
// The generated entry function reads each parameter from its slot in
// declaration order, reinterpreting the slot's bit pattern according to the
// parameter's category, calls the target, and writes a non-void result into
// the final slot the same way. Floating values are reread through a pointer
// cast, never converted numerically: the host marshaling layer stores raw
// bit patterns, and a numeric cast would corrupt them without any compiler
// diagnostic.
func EmitWrapper(fn *signature.Function, sourcePath string, spec WrapperSpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, "// Auto-generated wrapper for %s\n", fn.Name)
	fmt.Fprintf(&b, "// Entry: %s\n\n", spec.Entry)
	fmt.Fprintf(&b, "#include \"%s\"\n\n", HeaderFileName(sourcePath))
	fmt.Fprintf(&b, "#define JIT_ARGS_BASE 0x%08xu\n", spec.ArgAddress)
	fmt.Fprintf(&b, "#define JIT_ARGS_SIZE %d\n\n", spec.SlotCount)
	fmt.Fprintf(&b, "void %s(void)\n{\n", spec.Entry)
	b.WriteString("    volatile uint32_t *args = (volatile uint32_t *)JIT_ARGS_BASE;\n")

	if len(fn.Params) > 0 {
		b.WriteString("\n")
	}
	for i, p := range fn.Params {
		fmt.Fprintf(&b, "    %s\n", slotRead(p, i))
	}

	b.WriteString("\n")
	call := callExpr(fn)
	if fn.HasReturn() {
		fmt.Fprintf(&b, "    %s%s = %s;\n", declPrefix(fn.ReturnType), resultVar, call)
		fmt.Fprintf(&b, "    %s\n", slotWrite(fn))
	} else {
		fmt.Fprintf(&b, "    %s;\n", call)
	}

	b.WriteString("}\n")
	return b.String()
}

// WriteWrapper writes the wrapper translation unit into dir.
func WriteWrapper(fn *signature.Function, sourcePath, dir string, spec WrapperSpec) (string, error) {
	path := filepath.Join(dir, sourceStem(sourcePath)+"_wrapper.c")
	if err := os.WriteFile(path, []byte(EmitWrapper(fn, sourcePath, spec)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write wrapper %s: %w", path, err)
	}
	return path, nil
}

// slotRead renders the declaration reconstructing parameter p from slot i.
func slotRead(p signature.Param, i int) string {
	switch p.Category {
	case signature.ScalarFloat:
		// Bit reinterpretation, not numeric conversion.
		return fmt.Sprintf("%s%s = *(volatile %s *)&args[%d];", declPrefix(p.Type), p.Name, p.Type, i)
	case signature.Pointer:
		return fmt.Sprintf("%s%s = (%s)args[%d];", declPrefix(p.Type), p.Name, p.Type, i)
	default:
		return fmt.Sprintf("%s%s = (%s)args[%d];", declPrefix(p.Type), p.Name, p.Type, i)
	}
}

// slotWrite renders the statement storing the result into the final slot.
func slotWrite(fn *signature.Function) string {
	switch fn.ReturnCategory {
	case signature.ScalarFloat:
		return fmt.Sprintf("*(volatile %s *)&args[JIT_ARGS_SIZE - 1] = %s;", fn.ReturnType, resultVar)
	default:
		return fmt.Sprintf("args[JIT_ARGS_SIZE - 1] = (uint32_t)%s;", resultVar)
	}
}

func callExpr(fn *signature.Function) string {
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("%s(%s)", fn.Name, strings.Join(names, ", "))
}

// declPrefix renders a type for use before a variable name, keeping pointer
// stars attached to the name.
func declPrefix(typ string) string {
	if strings.HasSuffix(typ, "*") {
		return typ
	}
	return typ + " "
}
