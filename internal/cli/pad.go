package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p4jit/p4jit/internal/elfimg"
	jiterr "github.com/p4jit/p4jit/internal/errors"
	"github.com/p4jit/p4jit/internal/safe"
)

func NewPadCmd() *cobra.Command {
	var (
		binPath string
		elfPath string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "pad",
		Short: "Materialize zero-initialized regions in a raw binary image",
		Long: `Align a raw binary image to the slot width and append zero bytes for
every zero-fill section of the ELF it was extracted from, producing
the flat image the device expects at upload time.

Examples:
  p4jit pad --bin add_wrapper.bin --elf add_wrapper.elf
  p4jit pad --bin add_wrapper.bin --elf add_wrapper.elf --out add_upload.bin
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := safe.ReadFile(binPath, 16<<20)
			if err != nil {
				return fmt.Errorf("failed to read image %s: %w", binPath, err)
			}

			sections, err := elfimg.FileTable{}.Extract(cmd.Context(), elfPath)
			if err != nil {
				return err
			}

			padded := elfimg.PadBSS(image, sections)

			dest := outPath
			if dest == "" {
				dest = binPath
			}
			if err := os.WriteFile(dest, padded, 0o644); err != nil {
				return fmt.Errorf("failed to write image %s: %w", dest, err)
			}

			cmd.Printf("Padded %d -> %d bytes: %s\n", len(image), len(padded), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&binPath, "bin", "", "Raw binary image to pad")
	cmd.Flags().StringVar(&elfPath, "elf", "", "ELF image the binary was extracted from")
	cmd.Flags().StringVar(&outPath, "out", "", "Destination path (default: overwrite --bin)")

	jiterr.Must(cmd.MarkFlagRequired("bin"), "mark --bin required")
	jiterr.Must(cmd.MarkFlagRequired("elf"), "mark --elf required")

	return cmd
}
