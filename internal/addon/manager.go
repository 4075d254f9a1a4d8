package addon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/woxQAQ/template-css-lsp/internal/config"
	"github.com/woxQAQ/template-css-lsp/internal/wasm"
)

// Manager owns the add-on lifecycle: discovery, language lookup, and the
// long-lived engine instance bound for each stylesheet language.
type Manager struct {
	paths     []string
	runtime   *wasm.Runtime
	loader    *Loader
	registry  *Registry
	instances *wasm.InstanceManager
	logger    *zap.Logger

	mu     sync.RWMutex
	loaded bool
	bound  map[string]*Binding
}

// Binding pairs an add-on with the instance serving its language.
type Binding struct {
	Addon    *Addon
	Instance *wasm.Instance
}

// NewManager creates a manager over the configured add-on paths.
func NewManager(
	cfg *config.ServerConfig,
	runtime *wasm.Runtime,
	hostFuncs *wasm.HostFunctionsImpl,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		paths:     cfg.AddonPaths,
		runtime:   runtime,
		loader:    NewLoader(runtime, logger),
		registry:  NewRegistry(logger),
		instances: wasm.NewInstanceManager(runtime, hostFuncs, logger),
		logger:    logger.With(zap.String("component", "addon-manager")),
		bound:     make(map[string]*Binding),
	}
}

// LoadAll discovers, compiles and registers the add-ons found on the
// configured paths. Empty paths are not an error.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return fmt.Errorf("add-ons already loaded")
	}

	addons, err := m.loader.DiscoverAddons(ctx, m.paths)
	var notFound *NoAddonsFoundError
	switch {
	case errors.As(err, &notFound):
		m.logger.Warn("No add-ons found", zap.Strings("paths", m.paths))
	case err != nil:
		return err
	}

	for _, addon := range addons {
		if err := m.registry.Register(addon); err != nil {
			m.logger.Error("Skipping add-on",
				zap.String("name", addon.Name()),
				zap.Error(err),
			)
		}
	}
	m.loaded = true

	m.logger.Info("Add-ons loaded",
		zap.Int("count", m.registry.Count()),
		zap.Strings("languages", m.registry.Languages()),
	)
	return nil
}

// FindAddonForLanguage returns the first registered add-on that serves
// language with the completion capability.
func (m *Manager) FindAddonForLanguage(language string) (*Addon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(language)
}

func (m *Manager) findLocked(language string) (*Addon, error) {
	for _, addon := range m.registry.LookupByLanguage(language) {
		if addon.HasCapability(CapabilityCompletion) {
			return addon, nil
		}
	}
	return nil, &NoAddonForLanguageError{Language: language}
}

// Instantiate creates a fresh instance of the named add-on. It does not take
// m.mu, so Bind can call it while holding the lock.
func (m *Manager) Instantiate(ctx context.Context, addonName string) (*wasm.Instance, error) {
	addon, ok := m.registry.Get(addonName)
	if !ok {
		return nil, &AddonNotFoundError{AddonName: addonName}
	}

	return m.instances.Instantiate(ctx, &wasm.InstanceConfig{ModuleName: addon.Name()})
}

// Bind returns the engine instance for language, instantiating the
// matching add-on on first use. Later calls return the same binding.
func (m *Manager) Bind(ctx context.Context, language string) (*Binding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.bound[language]; ok {
		return b, nil
	}

	addon, err := m.findLocked(language)
	if err != nil {
		return nil, err
	}

	instance, err := m.Instantiate(ctx, addon.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate add-on '%s': %w", addon.Name(), err)
	}

	b := &Binding{Addon: addon, Instance: instance}
	m.bound[language] = b

	m.logger.Info("Bound engine add-on",
		zap.String("language", language),
		zap.Stringer("addon", addon),
		zap.String("instance_id", instance.ID),
	)
	return b, nil
}

// Shutdown closes bound instances, then the runtime.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for language, b := range m.bound {
		if err := b.Instance.Close(ctx); err != nil {
			m.logger.Warn("Failed to close engine instance",
				zap.String("language", language),
				zap.Error(err),
			)
		}
		delete(m.bound, language)
	}

	if err := m.runtime.Close(ctx); err != nil {
		m.logger.Error("Failed to shutdown runtime", zap.Error(err))
		return err
	}

	m.logger.Info("Add-on manager shutdown complete")
	return nil
}
