package addon

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/woxQAQ/template-css-lsp/internal/wasm/wasmtest"
)

// validManifest returns a manifest for a completion add-on named name.
func validManifest(name, language string) string {
	return fmt.Sprintf(`name: %s
version: 1.0.0
language: %s
wasm:
  file: %s.wasm
capabilities:
  - completion
  - hover
author: Template CSS Team
license: MIT
`, name, language, name)
}

// writeAddon creates base/dir with a manifest and, if wasmFile is set,
// a guest binary under that file name.
func writeAddon(t *testing.T, base, dir, manifest, wasmFile string) string {
	t.Helper()

	addonDir := filepath.Join(base, dir)
	if err := os.MkdirAll(addonDir, 0755); err != nil {
		t.Fatal(err)
	}
	if manifest != "" {
		if err := os.WriteFile(filepath.Join(addonDir, "manifest.yaml"), []byte(manifest), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if wasmFile != "" {
		if err := os.WriteFile(filepath.Join(addonDir, wasmFile), wasmtest.Guest{}.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return addonDir
}

// writeValidAddon creates a complete add-on for language.
func writeValidAddon(t *testing.T, base, name, language string) string {
	t.Helper()
	return writeAddon(t, base, name, validManifest(name, language), name+".wasm")
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
