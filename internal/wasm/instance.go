package wasm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	abi "github.com/woxQAQ/template-css-lsp/api/wasm"
)

// InstanceManager creates and manages module instances.
type InstanceManager struct {
	runtime   *Runtime
	logger    *zap.Logger
	hostFuncs *HostFunctionsImpl

	// Guards host module instantiation and the instance limit check.
	mu sync.Mutex
}

// NewInstanceManager creates a new instance manager.
func NewInstanceManager(runtime *Runtime, hostFuncs *HostFunctionsImpl, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime:   runtime,
		hostFuncs: hostFuncs,
		logger:    logger.With(zap.String("component", "wasm-instance")),
	}
}

// InstanceConfig holds configuration for creating instances.
type InstanceConfig struct {
	// Module name to instantiate.
	ModuleName string

	// Instance ID (if empty, a UUID is generated).
	InstanceID string
}

// Instance is an instantiated engine add-on.
type Instance struct {
	module  api.Module
	runtime *Runtime
	debug   bool
	logger  *zap.Logger

	ID        string
	Name      string
	CreatedAt int64

	// Exported functions, looked up once.
	exports map[string]api.Function
}

// Instantiate creates a new instance from a compiled module.
// The host module is instantiated on first use so add-ons can import it.
func (m *InstanceManager) Instantiate(ctx context.Context, config *InstanceConfig) (*Instance, error) {
	if m.runtime.IsClosed() {
		return nil, ErrRuntimeClosed
	}

	compiled, ok := m.runtime.GetCompiledModule(config.ModuleName)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: config.ModuleName}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if limit := m.runtime.config.MaxInstances; limit > 0 && m.runtime.InstanceCount() >= limit {
		return nil, &InstanceLimitError{ModuleName: config.ModuleName, Limit: limit}
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	m.logger.Info("Instantiating Wasm module",
		zap.String("module", config.ModuleName),
		zap.String("instance_id", instanceID),
	)

	if err := m.ensureHostModule(ctx); err != nil {
		return nil, err
	}

	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID).
		WithStartFunctions() // no _start; add-ons are libraries

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		return nil, &InstantiationError{
			ModuleName: config.ModuleName,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	exports := m.cacheExportedFunctions(module)

	instance := &Instance{
		module:    module,
		runtime:   m.runtime,
		debug:     m.runtime.config.DebugEnabled,
		logger:    m.logger.With(zap.String("instance_id", instanceID)),
		ID:        instanceID,
		Name:      config.ModuleName,
		CreatedAt: time.Now().Unix(),
		exports:   exports,
	}

	m.runtime.StoreInstance(instance)

	m.logger.Info("Module instantiated successfully",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(exports)),
	)

	return instance, nil
}

// ensureHostModule instantiates the "host" import module once per runtime.
func (m *InstanceManager) ensureHostModule(ctx context.Context) error {
	if m.runtime.runtime.Module(abi.HostModule) != nil {
		return nil
	}

	builder := m.hostFuncs.export(m.runtime.runtime.NewHostModuleBuilder(abi.HostModule))
	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("failed to instantiate host module: %w", err)
	}
	return nil
}

// cacheExportedFunctions looks up the add-on ABI functions.
func (m *InstanceManager) cacheExportedFunctions(module api.Module) map[string]api.Function {
	exports := make(map[string]api.Function)

	for _, name := range []string{abi.ExportAlloc, abi.ExportFree, abi.ExportParse, abi.ExportComplete} {
		if fn := module.ExportedFunction(name); fn != nil {
			exports[name] = fn
		}
	}

	return exports
}

// HasExport reports whether the instance exports a function.
func (i *Instance) HasExport(name string) bool {
	_, ok := i.exports[name]
	return ok
}

// Call writes payload into guest memory, calls the named export with
// (ptr, len) and returns the buffer the guest hands back.
func (i *Instance) Call(ctx context.Context, name string, payload []byte) ([]byte, error) {
	fn, ok := i.exports[name]
	if !ok {
		return nil, &FunctionNotFoundError{ModuleName: i.Name, FunctionName: name}
	}

	mem := NewMemory(i.module)

	ptr, size, err := mem.WriteBytes(ctx, payload)
	if err != nil {
		return nil, &CallError{ModuleName: i.Name, FunctionName: name, Err: err}
	}
	defer func() {
		if err := mem.Free(ctx, ptr, size); err != nil {
			i.logger.Warn("Failed to free request buffer", zap.Error(err))
		}
	}()

	start := time.Now()
	results, err := fn.Call(ctx, uint64(ptr), uint64(size))
	if err != nil {
		return nil, &CallError{ModuleName: i.Name, FunctionName: name, Err: err}
	}
	if len(results) != 1 {
		return nil, &CallError{
			ModuleName:   i.Name,
			FunctionName: name,
			Err:          fmt.Errorf("expected 1 result, got %d", len(results)),
		}
	}

	outPtr, outLen := UnpackPtrLen(results[0])
	out, ok := mem.ReadBytes(outPtr, outLen)
	if !ok {
		return nil, &MemoryAccessError{Operation: "read", Address: outPtr, Length: outLen}
	}
	if err := mem.Free(ctx, outPtr, outLen); err != nil {
		i.logger.Warn("Failed to free response buffer", zap.Error(err))
	}

	if i.debug {
		i.logger.Debug("Guest call completed",
			zap.String("function", name),
			zap.Int("request_bytes", len(payload)),
			zap.Uint32("response_bytes", outLen),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return out, nil
}

// Close closes the instance and releases resources.
func (i *Instance) Close(ctx context.Context) error {
	i.runtime.DeleteInstance(i.ID)
	return i.module.Close(ctx)
}
