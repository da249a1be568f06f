package codegen

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/p4jit/p4jit/internal/safe"
)

// StdTypesFileName is the fixed name of the standard-types support header
// copied into every build directory.
const StdTypesFileName = "std_types.h"

//go:embed std_types.h
var stdTypesHeader string

// StdTypes returns the standard-types header source that should be used when
// configuredPath is empty or unreadable. The extractor registers this text so
// typedef resolution matches what the compiler will see.
func StdTypes(configuredPath string, log zerolog.Logger) string {
	if configuredPath == "" {
		return stdTypesHeader
	}
	data, err := safe.ReadFile(configuredPath, 0)
	if err != nil {
		// Missing support file is non-fatal: the header may not be needed
		// by this signature at all.
		log.Warn().Str("path", configuredPath).Err(err).
			Msg("std_types.h not found, using embedded copy")
		return stdTypesHeader
	}
	return string(data)
}

// WriteSupportHeader copies the standard-types header into destDir and
// returns the destination path.
func WriteSupportHeader(destDir, content string) (string, error) {
	path := filepath.Join(destDir, StdTypesFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write support header %s: %w", path, err)
	}
	return path, nil
}
