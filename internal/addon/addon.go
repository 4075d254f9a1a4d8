package addon

import (
	"fmt"
	"slices"
	"time"

	"github.com/woxQAQ/template-css-lsp/internal/wasm"
)

// Addon is a stylesheet engine add-on whose module has been compiled and
// is ready to instantiate.
type Addon struct {
	Manifest *Manifest
	Compiled *wasm.CompiledModule
	LoadedAt time.Time
}

func (a *Addon) Name() string     { return a.Manifest.Name }
func (a *Addon) Language() string { return a.Manifest.Language }
func (a *Addon) Version() string  { return a.Manifest.Version }

// HasCapability reports whether the add-on declares a capability.
func (a *Addon) HasCapability(capability string) bool {
	return slices.Contains(a.Manifest.Capabilities, capability)
}

// String formats the add-on as name@version (language).
func (a *Addon) String() string {
	return fmt.Sprintf("%s@%s (%s)", a.Name(), a.Version(), a.Language())
}
