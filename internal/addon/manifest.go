package addon

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes a stylesheet engine add-on (manifest.yaml).
type Manifest struct {
	Name         string     `yaml:"name"`
	Version      string     `yaml:"version"`
	Language     string     `yaml:"language"`
	Wasm         WasmConfig `yaml:"wasm"`
	Capabilities []string   `yaml:"capabilities"`
	Author       string     `yaml:"author"`
	License      string     `yaml:"license"`

	// Internal fields
	dir string // Directory containing manifest
}

// WasmConfig holds Wasm module configuration.
type WasmConfig struct {
	File string `yaml:"file"`
}

// Stylesheet languages an add-on may serve.
var validLanguages = map[string]bool{
	"css":  true,
	"scss": true,
	"less": true,
}

// Capabilities an add-on may declare.
const (
	CapabilityCompletion  = "completion"
	CapabilityHover       = "hover"
	CapabilityDiagnostics = "diagnostics"
)

var validCapabilities = map[string]bool{
	CapabilityCompletion:  true,
	CapabilityHover:       true,
	CapabilityDiagnostics: true,
}

// ParseManifest reads and parses manifest.yaml from a directory.
func ParseManifest(dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, "manifest.yaml")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, &ManifestError{Path: manifestPath, Kind: ErrManifestMissing, Err: err}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestError{Path: manifestPath, Kind: ErrManifestSyntax, Err: err}
	}

	m.dir = dir

	// Validate manifest
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks required fields, the language and capability sets, and
// that the referenced Wasm file exists.
func (m *Manifest) Validate() error {
	required := []struct{ field, value string }{
		{"name", m.Name},
		{"version", m.Version},
		{"language", m.Language},
		{"wasm.file", m.Wasm.File},
	}
	for _, r := range required {
		if r.value == "" {
			return m.invalid(r.field, "%s is required", r.field)
		}
	}

	if !validLanguages[m.Language] {
		return m.invalid("language", "unsupported language %q (must be one of: css, scss, less)", m.Language)
	}

	if len(m.Capabilities) == 0 {
		return m.invalid("capabilities", "at least one capability is required")
	}
	for _, c := range m.Capabilities {
		if !validCapabilities[c] {
			return m.invalid("capabilities", "unknown capability %q (must be one of: completion, hover, diagnostics)", c)
		}
	}

	if _, err := os.Stat(m.WasmPath()); err != nil {
		return &ManifestError{Path: m.Path(), Kind: ErrWasmMissing, Field: "wasm.file", Err: err}
	}

	return nil
}

func (m *Manifest) invalid(field, format string, args ...any) error {
	return &ManifestError{
		Path:  m.Path(),
		Kind:  ErrManifestInvalid,
		Field: field,
		Err:   fmt.Errorf(format, args...),
	}
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, "manifest.yaml")
}

// WasmPath returns the absolute path to the Wasm file.
func (m *Manifest) WasmPath() string {
	return filepath.Join(m.dir, m.Wasm.File)
}
