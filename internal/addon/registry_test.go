package addon

import (
	"testing"

	"go.uber.org/zap"
)

func testAddon(name, language string) *Addon {
	return &Addon{
		Manifest: &Manifest{
			Name:         name,
			Version:      "1.0.0",
			Language:     language,
			Capabilities: []string{CapabilityCompletion},
			dir:          "/tmp/" + name,
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	err := registry.Register(testAddon("scss", "scss"))
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if registry.Count() != 1 {
		t.Errorf("expected count 1, got %d", registry.Count())
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register(testAddon("scss", "scss")); err != nil {
		t.Fatalf("First Register() failed: %v", err)
	}

	err := registry.Register(testAddon("scss", "css"))
	if err == nil {
		t.Fatal("Register() should fail for duplicate add-on")
	}

	_, ok := err.(*AddonAlreadyRegisteredError)
	if !ok {
		t.Errorf("expected AddonAlreadyRegisteredError, got %T", err)
	}

	// The rejected add-on must not leak into the language index.
	if len(registry.LookupByLanguage("css")) != 0 {
		t.Error("duplicate should not be indexed")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	_, ok := registry.Get("scss")
	if ok {
		t.Error("Get() should return false for non-existent add-on")
	}

	registry.Register(testAddon("scss", "scss"))

	retrieved, ok := registry.Get("scss")
	if !ok {
		t.Fatal("Get() should return true for existing add-on")
	}

	if retrieved.Name() != "scss" {
		t.Errorf("expected name 'scss', got '%s'", retrieved.Name())
	}
}

func TestRegistry_LookupByLanguage(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	registry.Register(testAddon("scss-core", "scss"))
	registry.Register(testAddon("scss-extra", "scss"))
	registry.Register(testAddon("less", "less"))

	scss := registry.LookupByLanguage("scss")
	if len(scss) != 2 {
		t.Fatalf("expected 2 scss add-ons, got %d", len(scss))
	}

	// Registration order is kept.
	if scss[0].Name() != "scss-core" || scss[1].Name() != "scss-extra" {
		t.Errorf("unexpected order: %s, %s", scss[0].Name(), scss[1].Name())
	}

	if len(registry.LookupByLanguage("less")) != 1 {
		t.Errorf("expected 1 less add-on")
	}

	if css := registry.LookupByLanguage("css"); len(css) != 0 {
		t.Errorf("expected 0 css add-ons, got %d", len(css))
	}
}

func TestRegistry_Languages(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	for _, a := range []*Addon{
		testAddon("scss", "scss"),
		testAddon("less", "less"),
		testAddon("scss-next", "scss"),
	} {
		if err := registry.Register(a); err != nil {
			t.Fatalf("Register(%s) failed: %v", a.Manifest.Name, err)
		}
	}

	got := registry.Languages()
	if len(got) != 2 || got[0] != "less" || got[1] != "scss" {
		t.Errorf("expected [less scss], got %v", got)
	}
}
