package wasm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
)

// Runtime manages the wazero runtime lifecycle.
// One Runtime hosts every engine add-on for the whole process.
type Runtime struct {
	// wazero runtime (singleton)
	runtime wazero.Runtime

	// Persistent compilation cache; nil when compiling in memory only.
	cache wazero.CompilationCache

	// Compiled module cache (key: module name -> value: *CompiledModule)
	modules sync.Map

	// Active instances (key: instance ID -> value: *Instance)
	instances sync.Map

	config *RuntimeConfig
	logger *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// RuntimeConfig holds runtime configuration.
type RuntimeConfig struct {
	// Memory limit per module, in 64KB pages.
	// Default: 256 pages = 16MB.
	MemoryPages uint32

	// Log guest calls at debug level.
	DebugEnabled bool

	// Compilation cache directory. Empty keeps compiled code in memory only.
	CacheDir string

	// Maximum number of live instances.
	MaxInstances int
}

// CompiledModule wraps a wazero.CompiledModule with metadata.
type CompiledModule struct {
	Module wazero.CompiledModule

	Name      string
	Source    string // File path
	SizeBytes int64

	CompiledAt int64
}

// NewRuntime creates the wazero runtime.
// This should be called once during application startup.
func NewRuntime(ctx context.Context, logger *zap.Logger, config *RuntimeConfig) (*Runtime, error) {
	if config == nil {
		config = DefaultRuntimeConfig()
	}

	rc := wazero.NewRuntimeConfig()
	if config.MemoryPages > 0 {
		rc = rc.WithMemoryLimitPages(config.MemoryPages)
	}

	var cache wazero.CompilationCache
	if config.CacheDir != "" {
		c, err := wazero.NewCompilationCacheWithDir(config.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open compilation cache '%s': %w", config.CacheDir, err)
		}
		cache = c
		rc = rc.WithCompilationCache(c)
	}

	runtime := &Runtime{
		runtime: wazero.NewRuntimeWithConfig(ctx, rc),
		cache:   cache,
		config:  config,
		logger:  logger.With(zap.String("component", "wasm-runtime")),
		closed:  make(chan struct{}),
	}

	logger.Info("Wasm runtime initialized",
		zap.Uint32("memory_pages", config.MemoryPages),
		zap.Bool("debug_enabled", config.DebugEnabled),
		zap.String("cache_dir", config.CacheDir),
		zap.Int("max_instances", config.MaxInstances),
	)

	return runtime, nil
}

// DefaultRuntimeConfig returns sensible defaults.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		MemoryPages:  256, // 16MB
		DebugEnabled: false,
		CacheDir:     "",
		MaxInstances: 100,
	}
}

// Close shuts down every instance and the runtime.
// Safe to call multiple times.
func (r *Runtime) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		r.logger.Info("Shutting down Wasm runtime")

		r.instances.Range(func(key, value any) bool {
			if inst, ok := value.(*Instance); ok {
				if closeErr := inst.module.Close(ctx); closeErr != nil {
					r.logger.Warn("Failed to close instance",
						zap.String("instance_id", key.(string)),
						zap.Error(closeErr),
					)
				}
			}
			r.instances.Delete(key)
			return true
		})

		err = r.runtime.Close(ctx)

		if r.cache != nil {
			if cacheErr := r.cache.Close(ctx); cacheErr != nil && err == nil {
				err = cacheErr
			}
		}

		close(r.closed)
		r.logger.Info("Wasm runtime shutdown complete")
	})

	return err
}

// GetCompiledModule retrieves a compiled module from cache.
func (r *Runtime) GetCompiledModule(name string) (*CompiledModule, bool) {
	if val, ok := r.modules.Load(name); ok {
		if mod, ok := val.(*CompiledModule); ok {
			return mod, true
		}
	}
	return nil, false
}

// StoreCompiledModule stores a compiled module in cache.
func (r *Runtime) StoreCompiledModule(module *CompiledModule) {
	r.modules.Store(module.Name, module)
}

// StoreInstance tracks an active instance.
func (r *Runtime) StoreInstance(instance *Instance) {
	r.instances.Store(instance.ID, instance)
}

// DeleteInstance removes an instance from tracking.
func (r *Runtime) DeleteInstance(instanceID string) {
	r.instances.Delete(instanceID)
}

// InstanceCount returns the number of tracked instances.
func (r *Runtime) InstanceCount() int {
	n := 0
	r.instances.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// IsClosed returns whether the runtime has been closed.
func (r *Runtime) IsClosed() bool {
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}
