package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p4jit/p4jit/internal/builder"
	"github.com/p4jit/p4jit/internal/config"
	"github.com/p4jit/p4jit/internal/elfimg"
	jiterr "github.com/p4jit/p4jit/internal/errors"
	"github.com/p4jit/p4jit/internal/logging"
	"github.com/p4jit/p4jit/internal/toolchain"
)

func NewBuildCmd() *cobra.Command {
	var (
		source     string
		function   string
		codeBase   hexValue
		argBase    hexValue
		outputDir  string
		firmware   bool
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a C function into an uploadable RV32 image",
		Long: `Build a C function into a flat binary image linked at a fixed device
address, plus the metadata record needed to invoke it.

The source file must contain the target function definition. The code
and argument addresses come from the device-side allocator.

Examples:
  p4jit build --source add.c --function add --code-base 0x40800000 --arg-base 0x48001000
  p4jit build --source dsp.c --function fir --code-base 0x40800000 --arg-base 0x48001000 --firmware=false
  p4jit build --source add.c --function add --code-base 0x40800000 --arg-base 0x48001000 --output ./out
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logCfg := logging.DefaultConfig()
			logCfg.Level = logLevel

			sections := elfimg.NewReadelfTable(cfg.Toolchain.Path, cfg.Toolchain.Prefix,
				logging.NewWithComponent(logCfg, "elf"))
			compiler := toolchain.NewGCC(cfg.Toolchain, sections,
				logging.NewWithComponent(logCfg, "toolchain"))
			orch := builder.New(compiler, cfg, logging.NewWithComponent(logCfg, "builder"))

			artifact, err := orch.Build(cmd.Context(), builder.Request{
				Source:         source,
				Function:       function,
				CodeBase:       uint32(codeBase),
				ArgBase:        uint32(argBase),
				OutputDir:      outputDir,
				UseFirmwareELF: firmware,
			})
			if err != nil {
				return err
			}

			imagePath := filepath.Join(filepath.Dir(artifact.MetadataPath),
				strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))+".bin")
			if err := os.WriteFile(imagePath, artifact.Bytes, 0o644); err != nil {
				return fmt.Errorf("failed to write image %s: %w", imagePath, err)
			}

			cmd.Printf("Built %s (%d bytes)\n", function, len(artifact.Bytes))
			cmd.Printf("Image:    %s\n", imagePath)
			cmd.Printf("Metadata: %s\n", artifact.MetadataPath)
			if addr, ok := artifact.EntryAddress(cfg.Wrapper.WrapperEntry); ok {
				cmd.Printf("Entry:    %s @ 0x%08x\n", cfg.Wrapper.WrapperEntry, addr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "C source file containing the target function")
	cmd.Flags().StringVar(&function, "function", "", "Name of the function to build")
	cmd.Flags().Var(&codeBase, "code-base", "Device address the code is linked at")
	cmd.Flags().Var(&argBase, "arg-base", "Device address of the argument slot array")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: <source dir>/../build)")
	cmd.Flags().BoolVar(&firmware, "firmware", true, "Resolve undefined symbols against the configured firmware ELF")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: $P4JIT_CONFIG, then ./p4jit.yaml)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")

	jiterr.Must(cmd.MarkFlagRequired("source"), "mark --source required")
	jiterr.Must(cmd.MarkFlagRequired("function"), "mark --function required")
	jiterr.Must(cmd.MarkFlagRequired("code-base"), "mark --code-base required")
	jiterr.Must(cmd.MarkFlagRequired("arg-base"), "mark --arg-base required")

	return cmd
}
