// Package cli implements the p4jit command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/p4jit/p4jit/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "p4jit",
	Short: "p4jit - build C functions for remote execution on ESP32-P4",
	Long: `Compile a single C function into a position-fixed RV32 binary image,
ready to upload into device RAM and invoke through a fixed-address
argument array.

The pipeline extracts the function signature, generates an adapter
wrapper and header, cross-compiles with the configured RISC-V
toolchain, flattens the linked image, and writes a metadata record
describing how to marshal arguments and read back the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewSectionsCmd())
	rootCmd.AddCommand(NewPadCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("p4jit version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
