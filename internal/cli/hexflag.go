package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
)

// hexValue is a 32-bit address flag accepting hex (0x...) or decimal input.
type hexValue uint32

var _ pflag.Value = (*hexValue)(nil)

func (h *hexValue) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid address %q: expected a 32-bit value like 0x40800000", s)
	}
	*h = hexValue(v)
	return nil
}

func (h *hexValue) String() string {
	return fmt.Sprintf("0x%08x", uint32(*h))
}

func (h *hexValue) Type() string {
	return "address"
}
