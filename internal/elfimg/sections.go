// Package elfimg post-processes built ELF images: extracting section
// geometry and materializing zero-initialized regions in the raw upload
// image.
package elfimg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	jiterr "github.com/p4jit/p4jit/internal/errors"
)

// Section type tags for the canonical segments.
const (
	// TypeProgBits marks a section whose bytes are stored in the image file.
	TypeProgBits = "PROGBITS"
	// TypeNoBits marks a zero-fill section with no bytes in the image file.
	TypeNoBits = "NOBITS"
)

// ErrSectionExtraction means the section report could not be obtained.
var ErrSectionExtraction = errors.New("section extraction failed")

// Section describes one canonical section of a built image.
// Never mutated after extraction.
type Section struct {
	Name    string
	Address uint64
	Size    uint64
	Type    string
}

// Table extracts section geometry from a built ELF image.
//
// Two implementations exist: ReadelfTable shells out to the cross
// toolchain's readelf, FileTable reads the file directly. Callers depend on
// this interface so the fragile text-report parser can be swapped out.
type Table interface {
	Extract(ctx context.Context, path string) (map[string]Section, error)
}

// canonicalSections are the only segments retained: code, read-only data,
// initialized data, and zero-initialized data.
var canonicalSections = map[string]bool{
	".text":   true,
	".rodata": true,
	".data":   true,
	".bss":    true,
}

// ReadelfTable extracts sections by parsing readelf's tabular report.
type ReadelfTable struct {
	readelf string
	log     zerolog.Logger
}

// NewReadelfTable locates <prefix>-readelf under toolchainPath. An empty
// toolchainPath resolves the tool through $PATH.
func NewReadelfTable(toolchainPath, prefix string, log zerolog.Logger) *ReadelfTable {
	tool := prefix + "-readelf"
	if toolchainPath != "" {
		tool = filepath.Join(toolchainPath, tool)
	}
	return &ReadelfTable{readelf: tool, log: log}
}

// Extract runs readelf -S and returns the canonical sections found.
func (t *ReadelfTable) Extract(ctx context.Context, path string) (map[string]Section, error) {
	args := []string{"-S", path}
	cmd := exec.CommandContext(ctx, t.readelf, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		toolErr := &jiterr.ToolError{Tool: t.readelf, Args: args, Stderr: stderr.String(), Err: err}
		return nil, fmt.Errorf("%w: %w", ErrSectionExtraction, toolErr)
	}

	sections := parseSectionReport(stdout.String())
	t.log.Debug().
		Str("image", filepath.Base(path)).
		Int("sections", len(sections)).
		Msg("extracted sections")
	return sections, nil
}

// sectionRow matches one section entry of a readelf -S report:
//
//	[ 1] .text             PROGBITS        40800000 001000 0000b4 00  AX  0   0  4
//
// capturing name, type, address, and size. Header lines and other
// non-section rows simply fail to match and are skipped.
var sectionRow = regexp.MustCompile(`\[\s*\d+\]\s+(\.[\w.]+)\s+(\w+)\s+([0-9a-fA-F]+)\s+[0-9a-fA-F]+\s+([0-9a-fA-F]+)`)

func parseSectionReport(report string) map[string]Section {
	sections := make(map[string]Section)
	for _, line := range strings.Split(report, "\n") {
		m := sectionRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if !canonicalSections[name] {
			continue
		}
		address, err := strconv.ParseUint(m[3], 16, 64)
		if err != nil {
			continue
		}
		size, err := strconv.ParseUint(m[4], 16, 64)
		if err != nil {
			continue
		}
		sections[name] = Section{Name: name, Type: m[2], Address: address, Size: size}
	}
	return sections
}
