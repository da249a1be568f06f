package config

import (
	"fmt"
	"regexp"
)

// cIdentifier matches a valid C symbol name for the wrapper entry point.
var cIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that the configuration can drive a build.
func (c *Config) Validate() error {
	if c.Wrapper.ArgsArraySize < 1 {
		return fmt.Errorf("wrapper.args_array_size must be at least 1, got %d", c.Wrapper.ArgsArraySize)
	}
	if c.Wrapper.WrapperEntry == "" {
		return fmt.Errorf("wrapper.wrapper_entry cannot be empty")
	}
	if !cIdentifier.MatchString(c.Wrapper.WrapperEntry) {
		return fmt.Errorf("wrapper.wrapper_entry %q is not a valid C identifier", c.Wrapper.WrapperEntry)
	}
	if c.Toolchain.Prefix == "" {
		return fmt.Errorf("toolchain.prefix cannot be empty")
	}
	return nil
}

// MaxParams returns the number of argument slots available to parameters.
// The final slot is reserved for the return value.
func (c *Config) MaxParams() int {
	return c.Wrapper.ArgsArraySize - 1
}
