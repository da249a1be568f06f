// Package builder sequences the wrapper build pipeline: signature
// extraction, code generation, the external compile/link step, binary
// layout, and metadata emission.
package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/p4jit/p4jit/internal/codegen"
	"github.com/p4jit/p4jit/internal/config"
	"github.com/p4jit/p4jit/internal/elfimg"
	"github.com/p4jit/p4jit/internal/signature"
	"github.com/p4jit/p4jit/internal/toolchain"
)

// ErrParameterBudget means a function declares more parameters than the
// argument array can carry alongside its reserved return slot.
var ErrParameterBudget = errors.New("parameter count exceeds args array capacity")

// BudgetError carries the specifics of an exceeded parameter budget.
type BudgetError struct {
	Function      string
	ParamCount    int
	ArgsArraySize int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf(
		"function %s has %d parameters but the args array supports at most %d (array_size=%d, last slot reserved for return value)",
		e.Function, e.ParamCount, e.ArgsArraySize-1, e.ArgsArraySize)
}

func (e *BudgetError) Unwrap() error {
	return ErrParameterBudget
}

// Compiler is the external build collaborator: it compiles and links one
// wrapper translation unit and reports the resulting image geometry.
type Compiler interface {
	Build(ctx context.Context, in toolchain.BuildInput) (*toolchain.BuildOutput, error)
}

// Request describes one wrapper build.
type Request struct {
	// Source is the C file containing the target function.
	Source string
	// Function is the target function name.
	Function string
	// CodeBase is the device address the code is linked at.
	CodeBase uint32
	// ArgBase is the device address of the argument slot array.
	ArgBase uint32
	// OutputDir receives the metadata file. Empty selects
	// <source dir>/../build.
	OutputDir string
	// UseFirmwareELF resolves undefined symbols against the configured
	// firmware image.
	UseFirmwareELF bool
}

// Artifact is a completed build, owned by the caller. Bytes is the flat
// upload image with zero-initialized regions already materialized.
type Artifact struct {
	BuildID      string
	Function     *signature.Function
	Bytes        []byte
	Sections     map[string]elfimg.Section
	Symbols      map[string]uint64
	Metadata     *codegen.Metadata
	MetadataPath string
}

// EntryAddress returns the linked address of the wrapper entry symbol, or
// false if the symbol table did not survive the link.
func (a *Artifact) EntryAddress(entry string) (uint64, bool) {
	addr, ok := a.Symbols[entry]
	return addr, ok
}

// Orchestrator runs the build pipeline. One build is synchronous and
// single-threaded; builds sharing a source directory must be serialized by
// the caller because they share fixed-name intermediate files.
type Orchestrator struct {
	compiler Compiler
	cfg      *config.Config
	log      zerolog.Logger
}

// New creates an orchestrator for the given collaborator and configuration.
func New(compiler Compiler, cfg *config.Config, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{compiler: compiler, cfg: cfg, log: log}
}

// Build runs the pipeline for one function. Every stage runs strictly after
// the previous one succeeds; the first failure aborts the build with no
// partial artifact and no retry.
func (o *Orchestrator) Build(ctx context.Context, req Request) (*Artifact, error) {
	buildID := uuid.NewString()
	log := o.log.With().
		Str("build_id", buildID).
		Str("function", req.Function).
		Logger()

	source, err := filepath.Abs(req.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path %s: %w", req.Source, err)
	}

	log.Info().Msg("generating wrapper")
	log.Debug().
		Str("source", source).
		Str("code_base", fmt.Sprintf("0x%08x", req.CodeBase)).
		Str("arg_base", fmt.Sprintf("0x%08x", req.ArgBase)).
		Msg("wrapper build request")

	stdTypes := codegen.StdTypes(o.cfg.Wrapper.StdTypesPath, log)

	extractor := signature.NewExtractor(log)
	extractor.AddHeaderSource(stdTypes)
	fn, err := extractor.ExtractFile(source, req.Function)
	if err != nil {
		return nil, err
	}
	for i, p := range fn.Params {
		log.Debug().
			Int("slot", i).
			Str("type", p.Type).
			Str("name", p.Name).
			Str("category", p.Category.String()).
			Msg("parameter")
	}

	// The final slot is reserved for the return value, so the budget check
	// happens before any file is generated.
	if len(fn.Params) > o.cfg.MaxParams() {
		return nil, &BudgetError{
			Function:      req.Function,
			ParamCount:    len(fn.Params),
			ArgsArraySize: o.cfg.Wrapper.ArgsArraySize,
		}
	}

	sourceDir := filepath.Dir(source)

	headerPath, err := codegen.WriteHeader(fn, source, sourceDir)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", headerPath).Msg("header generated")

	if _, err := codegen.WriteSupportHeader(sourceDir, stdTypes); err != nil {
		return nil, err
	}

	wrapperPath, err := codegen.WriteWrapper(fn, source, sourceDir, codegen.WrapperSpec{
		Entry:      o.cfg.Wrapper.WrapperEntry,
		ArgAddress: req.ArgBase,
		SlotCount:  o.cfg.Wrapper.ArgsArraySize,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", wrapperPath).Msg("wrapper generated")

	var firmwareELF string
	if req.UseFirmwareELF {
		firmwareELF = o.cfg.Toolchain.FirmwareELF
		if firmwareELF == "" {
			log.Warn().Msg("firmware symbol resolution requested but toolchain.firmware_elf is not configured")
		}
	}

	log.Info().Msg("building wrapper binary")
	out, err := o.compiler.Build(ctx, toolchain.BuildInput{
		Source:      wrapperPath,
		Entry:       o.cfg.Wrapper.WrapperEntry,
		CodeBase:    req.CodeBase,
		FirmwareELF: firmwareELF,
	})
	if err != nil {
		// Collaborator failures are propagated unchanged.
		return nil, err
	}
	log.Debug().Str("elf", out.ELFPath).Int("bytes", len(out.Bytes)).Msg("collaborator build complete")

	image := elfimg.PadBSS(out.Bytes, out.Sections)
	if len(image) != len(out.Bytes) {
		log.Debug().
			Int("raw", len(out.Bytes)).
			Int("padded", len(image)).
			Msg("materialized zero-initialized regions")
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(sourceDir), "build")
	}

	meta := codegen.NewMetadata(fn, req.CodeBase, req.ArgBase, o.cfg.Wrapper.ArgsArraySize)
	metaPath, err := meta.Write(outputDir)
	if err != nil {
		return nil, err
	}

	log.Info().Str("metadata", metaPath).Msg("wrapper build complete")

	return &Artifact{
		BuildID:      buildID,
		Function:     fn,
		Bytes:        image,
		Sections:     out.Sections,
		Symbols:      out.Symbols,
		Metadata:     meta,
		MetadataPath: metaPath,
	}, nil
}
