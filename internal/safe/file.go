// Package safe provides guarded file reads for caller-supplied paths.
package safe

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultMaxFileSize caps reads of caller-supplied files (1MB). C sources,
// support headers, and metadata records are all far below this.
const DefaultMaxFileSize = 1 << 20

// ReadFile reads a caller-supplied file with validations: symlinks are
// rejected, only regular files are read, and files over maxSize fail rather
// than exhausting memory. Zero maxSize means DefaultMaxFileSize.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Lstat(cleanPath)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("file %q is a symlink, which is not allowed", path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path %q is not a regular file", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum allowed size of %d bytes", path, maxSize)
	}

	return os.ReadFile(cleanPath)
}
