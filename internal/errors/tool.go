package errors

import (
	"fmt"
	"strings"
)

// ToolError describes a failed external tool invocation. It wraps the
// process error and carries the captured stderr so a build failure can be
// diagnosed without re-running the tool.
type ToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
