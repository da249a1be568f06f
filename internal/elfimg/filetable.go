package elfimg

import (
	"context"
	"debug/elf"
	"fmt"
)

// FileTable extracts section geometry by reading the ELF file directly.
// It needs no external toolchain and is the structured alternative to
// ReadelfTable's text-report parsing.
type FileTable struct{}

// Extract returns the canonical sections present in the image at path.
func (FileTable) Extract(ctx context.Context, path string) (map[string]Section, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSectionExtraction, path, err)
	}
	defer f.Close()

	sections := make(map[string]Section)
	for name := range canonicalSections {
		s := f.Section(name)
		if s == nil {
			continue
		}
		typ := TypeProgBits
		if s.Type == elf.SHT_NOBITS {
			typ = TypeNoBits
		}
		sections[name] = Section{Name: name, Address: s.Addr, Size: s.Size, Type: typ}
	}
	return sections, nil
}
