// Package config provides configuration loading and management.
package config

// SchemaVersion is the configuration schema version.
const SchemaVersion = "1"

// SlotWidth is the width in bytes of one argument slot on the target.
// The target is a 32-bit RISC-V core, so one slot is one native register.
const SlotWidth = 4

// Config represents the p4jit toolchain configuration file.
type Config struct {
	Version   string          `yaml:"version"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Wrapper   WrapperConfig   `yaml:"wrapper"`
}

// ToolchainConfig locates the cross toolchain and the firmware image used
// for symbol resolution.
type ToolchainConfig struct {
	// Path is the directory containing the cross-toolchain binaries.
	// Empty means the binaries are resolved through $PATH.
	Path string `yaml:"path,omitempty" env:"P4JIT_TOOLCHAIN_PATH"`
	// Prefix is the cross-toolchain triple prefix, e.g. "riscv32-esp-elf".
	Prefix string `yaml:"prefix" env:"P4JIT_TOOLCHAIN_PREFIX"`
	// FirmwareELF is the ELF image of the firmware running on the device.
	// When set, builds may resolve undefined symbols against it.
	FirmwareELF string `yaml:"firmware_elf,omitempty" env:"P4JIT_FIRMWARE_ELF"`
	// ExtraCFlags are appended verbatim to every compiler invocation.
	ExtraCFlags []string `yaml:"extra_cflags,omitempty" env:"P4JIT_EXTRA_CFLAGS"`
}

// WrapperConfig controls generated wrapper code and the argument channel.
type WrapperConfig struct {
	// ArgsArraySize is the number of fixed-width slots in the device-resident
	// argument array. The last slot is reserved for the return value.
	ArgsArraySize int `yaml:"args_array_size" env:"P4JIT_ARGS_ARRAY_SIZE"`
	// WrapperEntry is the symbol name of the generated entry function.
	WrapperEntry string `yaml:"wrapper_entry" env:"P4JIT_WRAPPER_ENTRY"`
	// StdTypesPath optionally points at a standard-types header to copy into
	// the build directory. Empty uses the embedded default.
	StdTypesPath string `yaml:"std_types_path,omitempty" env:"P4JIT_STD_TYPES_PATH"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: SchemaVersion,
		Toolchain: ToolchainConfig{
			Prefix: "riscv32-esp-elf",
		},
		Wrapper: WrapperConfig{
			ArgsArraySize: 16,
			WrapperEntry:  "jit_wrapper",
		},
	}
}
