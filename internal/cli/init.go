package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p4jit/p4jit/internal/config"
)

func NewInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a configuration file populated with the defaults, ready to be
edited with the local toolchain path and firmware image.

Examples:
  p4jit init
  p4jit init --output /etc/p4jit/p4jit.yaml
  p4jit init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("config file %s already exists (use --force to overwrite)", output)
				}
			}

			if err := config.Save(config.Default(), output); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", config.DefaultPath, "Destination path for the config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
