package addon

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	abi "github.com/woxQAQ/template-css-lsp/api/wasm"
	"github.com/woxQAQ/template-css-lsp/internal/config"
	"github.com/woxQAQ/template-css-lsp/internal/wasm"
)

func newTestManager(t *testing.T, paths ...string) (*Manager, *wasm.Runtime) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	runtime, err := wasm.NewRuntime(ctx, logger, wasm.DefaultRuntimeConfig())
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close(ctx) })

	cfg := &config.ServerConfig{AddonPaths: paths}
	return NewManager(cfg, runtime, wasm.NewHostFunctions(logger), logger), runtime
}

func TestManager_NewManager(t *testing.T) {
	manager, _ := newTestManager(t, "/tmp/addons")

	if manager.loaded {
		t.Error("Manager should not be loaded initially")
	}

	if manager.registry.Count() != 0 {
		t.Error("Registry should be empty initially")
	}
}

func TestManager_LoadAll(t *testing.T) {
	base := t.TempDir()
	writeValidAddon(t, base, "scss", "scss")
	writeValidAddon(t, base, "less", "less")

	manager, _ := newTestManager(t, base)

	if err := manager.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	if !manager.loaded {
		t.Error("Manager should be loaded")
	}

	if manager.registry.Count() != 2 {
		t.Errorf("expected 2 add-ons, got %d", manager.registry.Count())
	}

	if err := manager.LoadAll(context.Background()); err == nil {
		t.Error("second LoadAll() should fail")
	}
}

func TestManager_LoadAll_NoAddons(t *testing.T) {
	manager, _ := newTestManager(t, t.TempDir())

	if err := manager.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() should tolerate empty paths: %v", err)
	}

	if !manager.loaded {
		t.Error("Manager should be loaded")
	}
}

func TestManager_Instantiate_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Instantiate(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("Instantiate() should fail for non-existent add-on")
	}

	var notFound *AddonNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected AddonNotFoundError, got %T", err)
	}
	if notFound.AddonName != "nonexistent" {
		t.Errorf("expected add-on name 'nonexistent', got '%s'", notFound.AddonName)
	}
}

func TestManager_FindAddonForLanguage(t *testing.T) {
	base := t.TempDir()
	writeAddon(t, base, "a-scss-lint", `name: scss-lint
version: 0.1.0
language: scss
wasm:
  file: lint.wasm
capabilities:
  - diagnostics
`, "lint.wasm")
	writeValidAddon(t, base, "scss", "scss")

	manager, _ := newTestManager(t, base)
	if err := manager.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	addon, err := manager.FindAddonForLanguage("scss")
	if err != nil {
		t.Fatalf("FindAddonForLanguage() failed: %v", err)
	}

	// Only add-ons that complete qualify.
	if addon.Name() != "scss" {
		t.Errorf("expected add-on 'scss', got '%s'", addon.Name())
	}
}

func TestManager_FindAddonForLanguage_NotFound(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.FindAddonForLanguage("scss")
	if err == nil {
		t.Fatal("FindAddonForLanguage() should fail when no add-ons found")
	}

	notFound, ok := err.(*NoAddonForLanguageError)
	if !ok {
		t.Fatalf("expected NoAddonForLanguageError, got %T", err)
	}

	if notFound.Language != "scss" {
		t.Errorf("expected language 'scss', got '%s'", notFound.Language)
	}
}

func TestManager_Instantiate(t *testing.T) {
	base := t.TempDir()
	writeValidAddon(t, base, "scss", "scss")

	manager, runtime := newTestManager(t, base)
	ctx := context.Background()
	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	instance, err := manager.Instantiate(ctx, "scss")
	if err != nil {
		t.Fatalf("Instantiate() failed: %v", err)
	}

	if instance.Name != "scss" {
		t.Errorf("expected instance of 'scss', got '%s'", instance.Name)
	}

	if !instance.HasExport(abi.ExportComplete) {
		t.Error("instance should export complete")
	}

	if runtime.InstanceCount() != 1 {
		t.Errorf("expected 1 live instance, got %d", runtime.InstanceCount())
	}

	if _, err := manager.Instantiate(ctx, "nonexistent"); err == nil {
		t.Error("Instantiate() should fail for unknown add-on")
	}
}

func TestManager_Shutdown(t *testing.T) {
	manager, runtime := newTestManager(t)

	// Shutdown should work even without loaded add-ons
	if err := manager.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}

	if !runtime.IsClosed() {
		t.Error("Runtime should be closed after shutdown")
	}
}

func TestManager_Bind(t *testing.T) {
	base := t.TempDir()
	writeValidAddon(t, base, "scss", "scss")

	manager, runtime := newTestManager(t, base)
	ctx := context.Background()
	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}

	first, err := manager.Bind(ctx, "scss")
	if err != nil {
		t.Fatalf("Bind() failed: %v", err)
	}
	if first.Addon.Name() != "scss" {
		t.Errorf("expected add-on 'scss', got '%s'", first.Addon.Name())
	}

	second, err := manager.Bind(ctx, "scss")
	if err != nil {
		t.Fatalf("second Bind() failed: %v", err)
	}
	if second != first {
		t.Error("Bind() should reuse the existing binding")
	}
	if runtime.InstanceCount() != 1 {
		t.Errorf("expected 1 live instance, got %d", runtime.InstanceCount())
	}

	if _, err := manager.Bind(ctx, "less"); err == nil {
		t.Error("Bind() should fail for a language without add-ons")
	}

	if err := manager.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	if runtime.InstanceCount() != 0 {
		t.Errorf("expected no live instances after shutdown, got %d", runtime.InstanceCount())
	}
}

func TestManager_Bind_AfterShutdown(t *testing.T) {
	base := t.TempDir()
	writeValidAddon(t, base, "scss", "scss")

	manager, _ := newTestManager(t, base)
	ctx := context.Background()
	if err := manager.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if err := manager.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	// Bind instantiates through Instantiate, which refuses a closed runtime.
	_, err := manager.Bind(ctx, "scss")
	if !errors.Is(err, wasm.ErrRuntimeClosed) {
		t.Errorf("Bind() error = %v, want ErrRuntimeClosed", err)
	}
}
