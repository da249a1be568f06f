package toolchain

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rs/zerolog"

	jiterr "github.com/p4jit/p4jit/internal/errors"
)

// run executes an external tool and returns its stdout. A non-zero exit is
// surfaced as a ToolError carrying the captured stderr.
func run(ctx context.Context, log zerolog.Logger, tool string, args ...string) (string, error) {
	log.Debug().Str("tool", tool).Strs("args", args).Msg("running external tool")

	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &jiterr.ToolError{
			Tool:   tool,
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return stdout.String(), nil
}
