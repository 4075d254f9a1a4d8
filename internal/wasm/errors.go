package wasm

import (
	"errors"
	"fmt"
)

// ErrRuntimeClosed is returned when instantiating on a closed runtime.
var ErrRuntimeClosed = errors.New("wasm runtime is closed")

// CompilationError occurs when Wasm module compilation fails
type CompilationError struct {
	ModuleName string
	Err        error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to compile Wasm module '%s': %v", e.ModuleName, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// InstantiationError occurs when module instantiation fails
type InstantiationError struct {
	ModuleName string
	InstanceID string
	Err        error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate module '%s' (instance: %s): %v",
		e.ModuleName, e.InstanceID, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// ModuleNotFoundError occurs when a module is not in cache
type ModuleNotFoundError struct {
	ModuleName string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module '%s' not found in cache", e.ModuleName)
}

// InstanceLimitError occurs when the runtime already holds MaxInstances instances.
type InstanceLimitError struct {
	ModuleName string
	Limit      int
}

func (e *InstanceLimitError) Error() string {
	return fmt.Sprintf("cannot instantiate module '%s': instance limit %d reached",
		e.ModuleName, e.Limit)
}

// FunctionNotFoundError occurs when an exported function is missing
type FunctionNotFoundError struct {
	ModuleName   string
	FunctionName string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function '%s' not found in module '%s'",
		e.FunctionName, e.ModuleName)
}

// MemoryAccessError occurs when memory operations fail
type MemoryAccessError struct {
	Operation string
	Address   uint32
	Length    uint32
	Err       error
}

func (e *MemoryAccessError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("memory access failed (op=%s, addr=%d, len=%d)",
			e.Operation, e.Address, e.Length)
	}
	return fmt.Sprintf("memory access failed (op=%s, addr=%d, len=%d): %v",
		e.Operation, e.Address, e.Length, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}

// CallError occurs when a guest function traps or returns an unexpected result.
type CallError struct {
	ModuleName   string
	FunctionName string
	Err          error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call to '%s' in module '%s' failed: %v",
		e.FunctionName, e.ModuleName, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// GuestError is an error reported by the add-on itself in its response.
type GuestError struct {
	ModuleName   string
	FunctionName string
	Message      string
}

func (e *GuestError) Error() string {
	return fmt.Sprintf("%s (module '%s', function '%s')",
		e.Message, e.ModuleName, e.FunctionName)
}
