package wasm

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// ModuleLoader compiles add-on binaries and caches them by name.
type ModuleLoader struct {
	runtime *Runtime
	logger  *zap.Logger
}

// NewModuleLoader creates a new module loader.
func NewModuleLoader(runtime *Runtime, logger *zap.Logger) *ModuleLoader {
	return &ModuleLoader{
		runtime: runtime,
		logger:  logger.With(zap.String("component", "wasm-loader")),
	}
}

// LoadModuleFromFile compiles the binary at path under name, unless a module
// with that name is already cached.
func (l *ModuleLoader) LoadModuleFromFile(ctx context.Context, name, path string) (*CompiledModule, error) {
	if cached, ok := l.runtime.GetCompiledModule(name); ok {
		l.logger.Debug("Module cache hit", zap.String("module", name))
		return cached, nil
	}

	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", name, err)
	}

	l.logger.Info("Compiling Wasm module",
		zap.String("module", name),
		zap.String("path", path),
		zap.Int("size_bytes", len(wasmBytes)),
	)

	startTime := time.Now()

	compiled, err := l.runtime.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, &CompilationError{ModuleName: name, Err: err}
	}

	module := &CompiledModule{
		Module:     compiled,
		Name:       name,
		Source:     path,
		SizeBytes:  int64(len(wasmBytes)),
		CompiledAt: time.Now().Unix(),
	}
	l.runtime.StoreCompiledModule(module)

	l.logger.Info("Module compiled successfully",
		zap.String("module", name),
		zap.Duration("duration", time.Since(startTime)),
	)

	return module, nil
}
