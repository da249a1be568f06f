// Package toolchain invokes the RISC-V cross toolchain to compile and link
// generated wrapper code into a raw uploadable image.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/p4jit/p4jit/internal/config"
	"github.com/p4jit/p4jit/internal/elfimg"
	jiterr "github.com/p4jit/p4jit/internal/errors"
)

// BuildInput describes one wrapper build request.
type BuildInput struct {
	// Source is the wrapper translation unit to compile.
	Source string
	// Entry is the wrapper entry symbol the link is anchored on.
	Entry string
	// CodeBase is the address the code segment is linked at.
	CodeBase uint32
	// FirmwareELF, when non-empty, resolves undefined symbols against the
	// firmware image running on the device.
	FirmwareELF string
}

// BuildOutput is the collaborator's result: the raw image bytes plus the
// section and symbol data needed to lay it out and invoke it.
type BuildOutput struct {
	Bytes    []byte
	Sections map[string]elfimg.Section
	Symbols  map[string]uint64
	ELFPath  string
}

// GCC builds wrappers with <prefix>-gcc and <prefix>-objcopy.
type GCC struct {
	cfg      config.ToolchainConfig
	sections elfimg.Table
	log      zerolog.Logger
}

// NewGCC creates a compiler using the given toolchain configuration and
// section table implementation.
func NewGCC(cfg config.ToolchainConfig, sections elfimg.Table, log zerolog.Logger) *GCC {
	return &GCC{cfg: cfg, sections: sections, log: log}
}

// Build compiles and links in.Source at in.CodeBase, converts the linked
// image to raw bytes, and extracts its sections and symbols.
func (g *GCC) Build(ctx context.Context, in BuildInput) (*BuildOutput, error) {
	stem := strings.TrimSuffix(in.Source, filepath.Ext(in.Source))
	elfPath := stem + ".elf"
	binPath := stem + ".bin"

	if _, err := run(ctx, g.log, g.tool("gcc"), g.compileArgs(in, elfPath)...); err != nil {
		return nil, err
	}

	if _, err := run(ctx, g.log, g.tool("objcopy"), "-O", "binary", elfPath, binPath); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(binPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw image %s: %w", binPath, err)
	}
	defer jiterr.DeferRemove(g.log, binPath)

	sections, err := g.sections.Extract(ctx, elfPath)
	if err != nil {
		return nil, err
	}

	symbols, err := readSymbols(g.log, elfPath)
	if err != nil {
		return nil, err
	}

	g.log.Debug().
		Int("bytes", len(raw)).
		Int("sections", len(sections)).
		Int("symbols", len(symbols)).
		Msg("wrapper linked")

	return &BuildOutput{
		Bytes:    raw,
		Sections: sections,
		Symbols:  symbols,
		ELFPath:  elfPath,
	}, nil
}

// compileArgs builds the full gcc argument list for one wrapper build.
// The wrapper is freestanding: no startup files, no standard library, entry
// anchored on the wrapper symbol, code linked at the requested base.
func (g *GCC) compileArgs(in BuildInput, elfPath string) []string {
	args := []string{
		"-march=rv32imafc",
		"-mabi=ilp32f",
		"-Os",
		"-ffreestanding",
		"-nostartfiles",
		"-nostdlib",
		fmt.Sprintf("-Wl,--entry=%s", in.Entry),
		fmt.Sprintf("-Wl,-Ttext=0x%08x", in.CodeBase),
	}
	if in.FirmwareELF != "" {
		args = append(args, "-Wl,--just-symbols="+in.FirmwareELF)
	}
	args = append(args, g.cfg.ExtraCFlags...)
	return append(args, "-o", elfPath, in.Source)
}

// tool resolves a toolchain binary name, e.g. "gcc" -> riscv32-esp-elf-gcc.
func (g *GCC) tool(name string) string {
	bin := g.cfg.Prefix + "-" + name
	if g.cfg.Path != "" {
		return filepath.Join(g.cfg.Path, bin)
	}
	return bin
}
