// Package signature extracts C function signatures for wrapper generation.
//
// The accepted subset is deliberately narrow: non-variadic functions whose
// return type and parameters are (possibly typedef'd) integer scalars fitting
// one 32-bit slot, float, or single-level object pointers. Array parameters
// decay to pointers. Variadic argument lists, function-pointer parameters,
// aggregates passed by value, and scalars wider than a slot (double,
// long long, int64_t/uint64_t) are rejected. This is best-effort textual
// analysis of the function's external signature, not a C parser.
package signature

import (
	"errors"
	"strings"
)

// Extraction failure kinds, checkable with errors.Is.
var (
	// ErrNotFound means the named function does not appear in the source.
	ErrNotFound = errors.New("function signature not found")
	// ErrUnsupported means the function uses a construct outside the
	// supported subset.
	ErrUnsupported = errors.New("unsupported function signature")
)

// Category classifies how a value crosses the fixed-width argument channel.
// It determines the reinterpretation the generated wrapper performs on each
// slot, so a misclassification silently corrupts execution on the device.
type Category int

const (
	// ScalarInteger is an integer scalar, moved by value cast.
	ScalarInteger Category = iota
	// ScalarFloat is a floating-point scalar, moved by bit reinterpretation.
	ScalarFloat
	// Pointer is a device address, moved by address cast.
	Pointer
)

func (c Category) String() string {
	switch c {
	case ScalarFloat:
		return "float"
	case Pointer:
		return "pointer"
	default:
		return "int"
	}
}

// Param describes one parameter of the target function.
type Param struct {
	// Name is the parameter name as declared, or a synthesized argN name
	// for unnamed prototype parameters.
	Name string
	// Type is the declared type, with array parameters decayed to pointers.
	Type string
	// Category drives the marshaling code emitted for this parameter.
	Category Category
}

// Function is an extracted function signature. Immutable once parsed.
type Function struct {
	Name           string
	ReturnType     string
	ReturnCategory Category
	Params         []Param
}

// HasReturn reports whether the function returns a value.
func (f *Function) HasReturn() bool {
	return f.ReturnType != "void"
}

// Prototype renders the signature as a C declaration, without trailing
// semicolon.
func (f *Function) Prototype() string {
	var b strings.Builder
	b.WriteString(f.ReturnType)
	if !strings.HasSuffix(f.ReturnType, "*") {
		b.WriteString(" ")
	}
	b.WriteString(f.Name)
	b.WriteString("(")
	if len(f.Params) == 0 {
		b.WriteString("void")
	} else {
		for i, p := range f.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Type)
			if !strings.HasSuffix(p.Type, "*") {
				b.WriteString(" ")
			}
			b.WriteString(p.Name)
		}
	}
	b.WriteString(")")
	return b.String()
}
