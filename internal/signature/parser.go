package signature

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/p4jit/p4jit/internal/safe"
)

// Extractor finds function signatures in C source text.
//
// Typedefs collected from the source itself and from any registered support
// headers are resolved before a parameter's category is decided, since a
// typedef like `typedef float float32_t;` changes the marshaling code the
// wrapper emitter must produce.
type Extractor struct {
	log      zerolog.Logger
	typedefs map[string]string
}

// NewExtractor creates an extractor. Support headers whose typedefs should be
// visible during classification are registered with AddHeaderSource.
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{
		log:      log,
		typedefs: make(map[string]string),
	}
}

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	typedefDecl  = regexp.MustCompile(`typedef\s+([^;{}()]+?)\s*\*?\s*([A-Za-z_]\w*)\s*;`)
	lastIdent    = regexp.MustCompile(`([A-Za-z_]\w*)$`)
	typeShape    = regexp.MustCompile(`^[A-Za-z_][\w\s\*]*$`)
)

// Words that can legally precede a call site and would otherwise be mistaken
// for a return type.
var statementKeywords = map[string]bool{
	"return": true, "else": true, "case": true, "goto": true,
	"do": true, "if": true, "while": true, "switch": true,
}

// Storage-class and qualifier words stripped from a return type.
var typeQualifiers = map[string]bool{
	"static": true, "inline": true, "extern": true,
	"const": true, "volatile": true,
}

// Integer keywords the classifier recognizes; anything else that resolves to
// a bare word is logged before falling back to the integer category.
var integerKeywords = map[string]bool{
	"char": true, "short": true, "int": true, "long": true,
	"signed": true, "unsigned": true, "_Bool": true, "bool": true,
	"size_t": true, "uintptr_t": true,
}

// Scalar types wider than one 32-bit slot. An 8-byte value cannot cross the
// slot channel: as a parameter it would alias the next slot, as a return it
// would write past the end of the array.
var wideScalars = map[string]bool{
	"double": true, "int64_t": true, "uint64_t": true, "float64_t": true,
}

// AddHeaderSource registers additional source text (typically the shared
// standard-types header) whose typedefs participate in classification.
func (e *Extractor) AddHeaderSource(src string) {
	e.collectTypedefs(stripComments(src))
}

// ExtractFile reads path and extracts the signature of the named function.
func (e *Extractor) ExtractFile(path, name string) (*Function, error) {
	data, err := safe.ReadFile(path, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", path, err)
	}
	return e.Extract(string(data), name)
}

// Extract finds the named function in src and returns its signature.
// It returns ErrNotFound if the name is absent and ErrUnsupported if the
// declaration uses a construct outside the supported subset.
func (e *Extractor) Extract(src, name string) (*Function, error) {
	clean := stripComments(src)
	e.collectTypedefs(clean)

	nameRe, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	if err != nil {
		return nil, fmt.Errorf("invalid function name %q: %w", name, err)
	}

	for _, loc := range nameRe.FindAllStringIndex(clean, -1) {
		retType, ok := returnTypeBefore(clean, loc[0])
		if !ok {
			continue
		}

		params, ok := paramListAfter(clean, loc[1])
		if !ok {
			continue
		}

		return e.analyze(name, retType, params)
	}

	return nil, fmt.Errorf("function %q: %w", name, ErrNotFound)
}

// analyze builds the Function from the raw return-type and parameter text.
func (e *Extractor) analyze(name, retType, params string) (*Function, error) {
	fn := &Function{Name: name}

	ret := normalizeType(stripQualifiers(retType))
	if ret == "" {
		return nil, fmt.Errorf("function %q has no return type: %w", name, ErrUnsupported)
	}
	if err := e.checkAggregate(name, ret); err != nil {
		return nil, err
	}
	if ret != "void" {
		if err := e.checkSlotFit(name, ret); err != nil {
			return nil, err
		}
	}
	fn.ReturnType = ret
	if ret != "void" {
		fn.ReturnCategory = e.classify(ret)
	}

	parsed, err := e.parseParams(name, params)
	if err != nil {
		return nil, err
	}
	fn.Params = parsed

	e.log.Debug().
		Str("function", name).
		Str("return_type", fn.ReturnType).
		Int("params", len(fn.Params)).
		Msg("signature extracted")

	return fn, nil
}

// parseParams splits and classifies the parameter list text.
func (e *Extractor) parseParams(fnName, raw string) ([]Param, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "void" {
		return nil, nil
	}
	if strings.Contains(raw, "...") {
		return nil, fmt.Errorf("function %q is variadic: %w", fnName, ErrUnsupported)
	}

	parts := strings.Split(raw, ",")
	params := make([]Param, 0, len(parts))
	for i, part := range parts {
		p, err := e.parseParam(fnName, part, i)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func (e *Extractor) parseParam(fnName, raw string, idx int) (Param, error) {
	decl := strings.TrimSpace(raw)
	if decl == "" {
		return Param{}, fmt.Errorf("function %q has an empty parameter declaration: %w", fnName, ErrUnsupported)
	}
	if strings.ContainsAny(decl, "()") {
		return Param{}, fmt.Errorf("function %q takes a function pointer parameter: %w", fnName, ErrUnsupported)
	}

	// Array parameters decay to pointers.
	arrayDecay := false
	if i := strings.IndexByte(decl, '['); i >= 0 {
		decl = strings.TrimSpace(decl[:i])
		arrayDecay = true
	}

	decl = normalizeType(decl)
	m := lastIdent.FindStringSubmatch(decl)

	var typ, name string
	if m == nil {
		// Declaration ends in '*': an unnamed pointer parameter.
		typ = decl
		name = fmt.Sprintf("arg%d", idx)
	} else {
		name = m[1]
		typ = normalizeType(strings.TrimSpace(strings.TrimSuffix(decl, name)))
		if typ == "" || typeQualifiers[typ] || isTypeKeyword(name) {
			// The trailing word is itself a type keyword ("unsigned int",
			// bare "int32_t", ...): the parameter is unnamed.
			typ = decl
			name = fmt.Sprintf("arg%d", idx)
		}
	}

	if arrayDecay {
		typ = normalizeType(typ + " *")
	}

	if err := e.checkAggregate(fnName, typ); err != nil {
		return Param{}, err
	}
	if err := e.checkSlotFit(fnName, typ); err != nil {
		return Param{}, err
	}

	return Param{Name: name, Type: typ, Category: e.classify(typ)}, nil
}

// classify derives the marshaling category from a type's syntactic shape,
// resolving typedefs first.
func (e *Extractor) classify(typ string) Category {
	resolved := e.resolve(typ)
	if strings.Contains(resolved, "*") {
		return Pointer
	}
	if strings.Contains(resolved, "float") || strings.Contains(resolved, "double") {
		return ScalarFloat
	}
	for _, w := range strings.Fields(resolved) {
		if !integerKeywords[w] && !typeQualifiers[w] {
			e.log.Debug().
				Str("type", typ).
				Str("resolved", resolved).
				Msg("unknown type treated as integer scalar")
			break
		}
	}
	return ScalarInteger
}

// resolve chases typedef chains until a fixed point or a hop limit.
func (e *Extractor) resolve(typ string) string {
	resolved := stripQualifiers(typ)
	for i := 0; i < 8; i++ {
		base, ok := e.typedefs[resolved]
		if !ok {
			break
		}
		resolved = base
	}
	return resolved
}

// checkSlotFit rejects non-pointer types wider than one 32-bit slot.
// Pointers always fit: the slot carries the address, not the pointee.
func (e *Extractor) checkSlotFit(fnName, typ string) error {
	resolved := e.resolve(typ)
	if strings.Contains(resolved, "*") {
		return nil
	}

	longs := 0
	for _, w := range strings.Fields(resolved) {
		if wideScalars[w] {
			return fmt.Errorf("function %q uses %s, which does not fit a 32-bit slot: %w", fnName, typ, ErrUnsupported)
		}
		if w == "long" {
			longs++
		}
	}
	if longs >= 2 {
		return fmt.Errorf("function %q uses %s, which does not fit a 32-bit slot: %w", fnName, typ, ErrUnsupported)
	}
	return nil
}

func (e *Extractor) checkAggregate(fnName, typ string) error {
	if strings.Contains(typ, "*") {
		return nil
	}
	for _, w := range strings.Fields(typ) {
		if w == "struct" || w == "union" || w == "enum" {
			return fmt.Errorf("function %q passes an aggregate by value (%s): %w", fnName, typ, ErrUnsupported)
		}
	}
	return nil
}

func (e *Extractor) collectTypedefs(src string) {
	for _, m := range typedefDecl.FindAllStringSubmatch(src, -1) {
		base := normalizeType(m[1])
		name := m[2]
		if strings.Contains(m[0], "*") && !strings.Contains(base, "*") {
			// `typedef float *fptr_t;` keeps its pointer shape.
			base = base + " *"
		}
		e.typedefs[name] = base
	}
}

// returnTypeBefore extracts the would-be return type text preceding a match
// of the function name, and reports whether it has the shape of a type.
func returnTypeBefore(src string, nameStart int) (string, bool) {
	head := src[:nameStart]
	if i := strings.LastIndexAny(head, ";{}"); i >= 0 {
		head = head[i+1:]
	}

	// Preprocessor directives between declarations are not part of a type.
	var kept []string
	for _, line := range strings.Split(head, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	head = strings.TrimSpace(strings.Join(kept, " "))

	if head == "" || !typeShape.MatchString(head) {
		return "", false
	}
	stripped := stripQualifiers(head)
	if stripped == "" || statementKeywords[stripped] {
		return "", false
	}
	return head, true
}

// paramListAfter extracts the parameter list starting just after the opening
// parenthesis. A nested parenthesis before the closing one means a
// function-pointer parameter; the text is still returned so the caller can
// reject it with a precise error.
func paramListAfter(src string, openEnd int) (string, bool) {
	rest := src[openEnd:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// isTypeKeyword reports whether word can only be a type, never a parameter
// name.
func isTypeKeyword(word string) bool {
	return integerKeywords[word] || word == "float" || word == "double" || word == "void"
}

// stripQualifiers removes storage-class and cv qualifiers from a type string.
func stripQualifiers(typ string) string {
	fields := strings.Fields(typ)
	kept := fields[:0]
	for _, f := range fields {
		if !typeQualifiers[f] {
			kept = append(kept, f)
		}
	}
	return normalizeType(strings.Join(kept, " "))
}

// normalizeType collapses whitespace and star placement, e.g.
// "float*  x" -> "float* x", "float  * *" -> "float **".
func normalizeType(typ string) string {
	spaced := strings.ReplaceAll(typ, "*", " * ")
	fields := strings.Fields(spaced)

	var b strings.Builder
	for _, f := range fields {
		switch {
		case b.Len() == 0:
			b.WriteString(f)
		case f == "*" && strings.HasSuffix(b.String(), "*"):
			b.WriteString("*")
		default:
			b.WriteString(" ")
			b.WriteString(f)
		}
	}
	return b.String()
}

func stripComments(src string) string {
	return lineComment.ReplaceAllString(blockComment.ReplaceAllString(src, " "), " ")
}
