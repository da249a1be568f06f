package codegen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/p4jit/p4jit/internal/config"
	"github.com/p4jit/p4jit/internal/safe"
	"github.com/p4jit/p4jit/internal/signature"
)

// ParamMeta is one parameter entry in the persisted metadata record.
type ParamMeta struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Addresses is the runtime address block of the metadata record.
type Addresses struct {
	CodeBase       string `json:"code_base"`
	ArgBase        string `json:"arg_base"`
	ArgsArrayBytes int    `json:"args_array_bytes"`
	ArgsArraySize  int    `json:"args_array_size"`
}

// Metadata is the durable description of how to invoke a built function.
// It is sufficient on its own to pack arguments and unpack a result without
// re-reading the source. Addresses stay valid only until the device frees
// the corresponding allocation.
type Metadata struct {
	Name       string      `json:"name"`
	ReturnType string      `json:"return_type"`
	Parameters []ParamMeta `json:"parameters"`
	Addresses  Addresses   `json:"addresses"`
}

// NewMetadata builds the metadata record for a signature and its addresses.
func NewMetadata(fn *signature.Function, codeBase, argBase uint32, argsArraySize int) *Metadata {
	params := make([]ParamMeta, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ParamMeta{
			Type:     p.Type,
			Name:     p.Name,
			Category: p.Category.String(),
		}
	}
	return &Metadata{
		Name:       fn.Name,
		ReturnType: fn.ReturnType,
		Parameters: params,
		Addresses: Addresses{
			CodeBase:       fmt.Sprintf("0x%08x", codeBase),
			ArgBase:        fmt.Sprintf("0x%08x", argBase),
			ArgsArrayBytes: argsArraySize * config.SlotWidth,
			ArgsArraySize:  argsArraySize,
		},
	}
}

// Write persists the metadata as <name>_signature.json in dir, creating the
// directory if absent, and returns the file path.
func (m *Metadata) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata for %s: %w", m.Name, err)
	}

	path := filepath.Join(dir, m.Name+"_signature.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write metadata %s: %w", path, err)
	}
	return path, nil
}

// LoadMetadata reads a metadata record persisted by a previous build.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := safe.ReadFile(path, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata %s: %w", path, err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %w", path, err)
	}
	return &m, nil
}
