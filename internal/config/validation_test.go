package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "minimum array size",
			mutate: func(c *Config) { c.Wrapper.ArgsArraySize = 1 },
		},
		{
			name:      "zero array size",
			mutate:    func(c *Config) { c.Wrapper.ArgsArraySize = 0 },
			wantError: "args_array_size",
		},
		{
			name:      "negative array size",
			mutate:    func(c *Config) { c.Wrapper.ArgsArraySize = -3 },
			wantError: "args_array_size",
		},
		{
			name:      "empty entry symbol",
			mutate:    func(c *Config) { c.Wrapper.WrapperEntry = "" },
			wantError: "wrapper_entry",
		},
		{
			name:      "entry symbol with dash",
			mutate:    func(c *Config) { c.Wrapper.WrapperEntry = "jit-wrapper" },
			wantError: "not a valid C identifier",
		},
		{
			name:      "entry symbol starting with digit",
			mutate:    func(c *Config) { c.Wrapper.WrapperEntry = "0entry" },
			wantError: "not a valid C identifier",
		},
		{
			name:      "empty toolchain prefix",
			mutate:    func(c *Config) { c.Toolchain.Prefix = "" },
			wantError: "prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantError)
			}
		})
	}
}

func TestMaxParams(t *testing.T) {
	cfg := Default()
	cfg.Wrapper.ArgsArraySize = 4
	assert.Equal(t, 3, cfg.MaxParams())

	cfg.Wrapper.ArgsArraySize = 1
	assert.Equal(t, 0, cfg.MaxParams())
}
