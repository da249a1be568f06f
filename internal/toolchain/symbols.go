package toolchain

import (
	"debug/elf"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	jiterr "github.com/p4jit/p4jit/internal/errors"
)

// readSymbols returns the defined symbols of the linked image, mapping name
// to address. An image with a stripped symbol table yields an empty map.
func readSymbols(log zerolog.Logger, path string) (map[string]uint64, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open linked image %s: %w", path, err)
	}
	defer jiterr.DeferClose(log, f, "failed to close linked image")

	syms, err := f.Symbols()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return map[string]uint64{}, nil
		}
		return nil, fmt.Errorf("failed to read symbols from %s: %w", path, err)
	}

	symbols := make(map[string]uint64, len(syms))
	for _, s := range syms {
		if s.Name == "" || s.Section == elf.SHN_UNDEF {
			continue
		}
		symbols[s.Name] = s.Value
	}
	return symbols, nil
}
