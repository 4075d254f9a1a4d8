package addon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/woxQAQ/template-css-lsp/internal/wasm"
)

// Loader reads add-on directories and compiles their engine modules.
type Loader struct {
	modules *wasm.ModuleLoader
	logger  *zap.Logger
}

// NewLoader creates a loader compiling into runtime.
func NewLoader(runtime *wasm.Runtime, logger *zap.Logger) *Loader {
	return &Loader{
		modules: wasm.NewModuleLoader(runtime, logger),
		logger:  logger.With(zap.String("component", "addon-loader")),
	}
}

// LoadAddon parses dir/manifest.yaml and compiles the module it names.
// The compiled module is cached under the add-on name, which is what
// instances are created from.
func (l *Loader) LoadAddon(ctx context.Context, dir string) (*Addon, error) {
	manifest, err := ParseManifest(dir)
	if err != nil {
		return nil, err
	}

	compiled, err := l.modules.LoadModuleFromFile(ctx, manifest.Name, manifest.WasmPath())
	if err != nil {
		return nil, &AddonLoadError{AddonName: manifest.Name, Err: err}
	}

	addon := &Addon{
		Manifest: manifest,
		Compiled: compiled,
		LoadedAt: time.Now(),
	}

	l.logger.Info("Add-on loaded",
		zap.Stringer("addon", addon),
		zap.Int64("size_bytes", compiled.SizeBytes),
	)
	return addon, nil
}

// DiscoverAddons loads every subdirectory of paths as an add-on. Missing
// paths are skipped and broken add-ons are logged; it fails only when
// nothing loads.
func (l *Loader) DiscoverAddons(ctx context.Context, paths []string) ([]*Addon, error) {
	var (
		addons   []*Addon
		failures []error
	)

	for _, base := range paths {
		dirs, err := addonDirs(base)
		if err != nil {
			return nil, err
		}
		if dirs == nil {
			l.logger.Warn("Add-on path does not exist", zap.String("path", base))
			continue
		}

		for _, dir := range dirs {
			addon, err := l.LoadAddon(ctx, dir)
			if err != nil {
				l.logger.Error("Failed to load add-on",
					zap.String("dir", dir),
					zap.Error(err),
				)
				failures = append(failures, err)
				continue
			}
			addons = append(addons, addon)
		}
	}

	if len(addons) == 0 {
		return nil, &NoAddonsFoundError{Paths: paths, Failures: errors.Join(failures...)}
	}
	if len(failures) > 0 {
		l.logger.Warn("Some add-ons failed to load",
			zap.Int("loaded", len(addons)),
			zap.Int("failed", len(failures)),
		)
	}
	return addons, nil
}

// addonDirs lists the subdirectories of base. It returns nil, nil when base
// does not exist.
func addonDirs(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory '%s': %w", base, err)
	}

	dirs := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(base, entry.Name()))
		}
	}
	return dirs, nil
}
