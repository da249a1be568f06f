package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no explicit path is given.
const DefaultPath = "p4jit.yaml"

// EnvConfigPath is the environment variable overriding the config file path.
const EnvConfigPath = "P4JIT_CONFIG"

// Load reads the configuration from path.
//
// The path is resolved in this order:
//  1. The explicit path argument.
//  2. The P4JIT_CONFIG environment variable.
//  3. ./p4jit.yaml in the working directory.
//
// A missing file is not an error: defaults are returned with environment
// variable overrides applied, so the tool works out of the box when the cross
// toolchain is on $PATH.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to env overrides on defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Apply environment variable overrides (layered configuration).
	if err := LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path in YAML form.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
