package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/p4jit/p4jit/internal/config"
	"github.com/p4jit/p4jit/internal/elfimg"
	"github.com/p4jit/p4jit/internal/logging"
)

func NewSectionsCmd() *cobra.Command {
	var (
		native     bool
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "sections <image.elf>",
		Short: "Print the canonical section table of a built image",
		Long: `Print the code, read-only data, initialized data, and zero-fill
sections of a built ELF image.

By default the table comes from the cross toolchain's readelf. With
--native the ELF file is read directly, which needs no toolchain.

Examples:
  p4jit sections build/add_wrapper.elf
  p4jit sections --native build/add_wrapper.elf
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logCfg := logging.DefaultConfig()
			logCfg.Level = logLevel

			var table elfimg.Table = elfimg.FileTable{}
			if !native {
				cfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				table = elfimg.NewReadelfTable(cfg.Toolchain.Path, cfg.Toolchain.Prefix,
					logging.NewWithComponent(logCfg, "elf"))
			}

			sections, err := table.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(sections) == 0 {
				cmd.Println("No canonical sections found")
				return nil
			}

			names := make([]string, 0, len(sections))
			for name := range sections {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				return sections[names[i]].Address < sections[names[j]].Address
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SECTION\tTYPE\tADDRESS\tSIZE")
			for _, name := range names {
				s := sections[name]
				fmt.Fprintf(w, "%s\t%s\t0x%08x\t%d\n", s.Name, s.Type, s.Address, s.Size)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&native, "native", false, "Read the ELF file directly instead of invoking readelf")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: $P4JIT_CONFIG, then ./p4jit.yaml)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")

	return cmd
}
