package addon

import (
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Registry indexes loaded add-ons by name and by stylesheet language.
type Registry struct {
	mu         sync.RWMutex
	byName     map[string]*Addon
	byLanguage map[string][]*Addon // registration order
	logger     *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		byName:     make(map[string]*Addon),
		byLanguage: make(map[string][]*Addon),
		logger:     logger.With(zap.String("component", "addon-registry")),
	}
}

// Register adds an add-on. Names are unique.
func (r *Registry) Register(addon *Addon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := addon.Name()
	if _, exists := r.byName[name]; exists {
		return &AddonAlreadyRegisteredError{AddonName: name}
	}

	r.byName[name] = addon
	r.byLanguage[addon.Language()] = append(r.byLanguage[addon.Language()], addon)

	r.logger.Info("Add-on registered", zap.Stringer("addon", addon))
	return nil
}

// Get retrieves an add-on by name.
func (r *Registry) Get(name string) (*Addon, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	addon, ok := r.byName[name]
	return addon, ok
}

// LookupByLanguage returns the add-ons serving language in registration
// order. The slice is a copy.
func (r *Registry) LookupByLanguage(language string) []*Addon {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.byLanguage[language])
}

// Languages returns the languages with at least one add-on, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.byLanguage))
}

// Count returns the number of registered add-ons.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byName)
}
