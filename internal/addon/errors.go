package addon

import (
	"errors"
	"fmt"
)

// Manifest failure classes, matched with errors.Is against *ManifestError.
var (
	ErrManifestMissing = errors.New("manifest not found")
	ErrManifestSyntax  = errors.New("manifest is not valid YAML")
	ErrManifestInvalid = errors.New("manifest validation failed")
	ErrWasmMissing     = errors.New("wasm file not found")
)

// ErrNoAddons is matched by *NoAddonsFoundError.
var ErrNoAddons = errors.New("no add-ons found")

// ManifestError reports a manifest.yaml that cannot be used.
type ManifestError struct {
	Path  string
	Kind  error
	Field string
	Err   error
}

func (e *ManifestError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Path, e.Kind)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field: %s)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ManifestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// AddonLoadError wraps a compile failure for an add-on's module.
type AddonLoadError struct {
	AddonName string
	Err       error
}

func (e *AddonLoadError) Error() string {
	return fmt.Sprintf("failed to load add-on '%s': %v", e.AddonName, e.Err)
}

func (e *AddonLoadError) Unwrap() error {
	return e.Err
}

type AddonNotFoundError struct {
	AddonName string
}

func (e *AddonNotFoundError) Error() string {
	return fmt.Sprintf("add-on '%s' not found", e.AddonName)
}

// NoAddonForLanguageError occurs when no loaded add-on completes a language.
type NoAddonForLanguageError struct {
	Language string
}

func (e *NoAddonForLanguageError) Error() string {
	return fmt.Sprintf("no completion add-on for language '%s'", e.Language)
}

type AddonAlreadyRegisteredError struct {
	AddonName string
}

func (e *AddonAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("add-on '%s' is already registered", e.AddonName)
}

// NoAddonsFoundError occurs when discovery yields nothing usable.
// Failures joins the per-directory load errors, if any.
type NoAddonsFoundError struct {
	Paths    []string
	Failures error
}

func (e *NoAddonsFoundError) Error() string {
	if e.Failures != nil {
		return fmt.Sprintf("no add-ons loaded from %v: %v", e.Paths, e.Failures)
	}
	return fmt.Sprintf("no add-ons found in paths: %v", e.Paths)
}

func (e *NoAddonsFoundError) Is(target error) bool {
	return target == ErrNoAddons
}

func (e *NoAddonsFoundError) Unwrap() error {
	return e.Failures
}
