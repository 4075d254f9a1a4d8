package wasm

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	abi "github.com/woxQAQ/template-css-lsp/api/wasm"
)

// Memory moves request and response buffers across the guest boundary.
//
// Guest memory is separate from Go memory. Writes go through the guest's own
// alloc export so the guest allocator stays in charge of its heap; reads are
// bounds-checked by wazero.
type Memory struct {
	mem   api.Memory
	alloc api.Function
	free  api.Function
}

// NewMemory creates a memory helper for a guest module.
func NewMemory(module api.Module) *Memory {
	return &Memory{
		mem:   module.Memory(),
		alloc: module.ExportedFunction(abi.ExportAlloc),
		free:  module.ExportedFunction(abi.ExportFree),
	}
}

// ReadBytes copies length bytes out of Wasm memory.
func (m *Memory) ReadBytes(ptr uint32, length uint32) ([]byte, bool) {
	view, ok := m.mem.Read(ptr, length)
	if !ok {
		return nil, false
	}
	// The view aliases guest memory, which may move on the next grow.
	out := make([]byte, len(view))
	copy(out, view)
	return out, true
}

// WriteBytes allocates a guest buffer and copies data into it.
func (m *Memory) WriteBytes(ctx context.Context, data []byte) (uint32, uint32, error) {
	if m.alloc == nil {
		return 0, 0, fmt.Errorf("guest does not export '%s'", abi.ExportAlloc)
	}

	size := uint32(len(data))
	results, err := m.alloc.Call(ctx, uint64(size))
	if err != nil {
		return 0, 0, &MemoryAccessError{Operation: "alloc", Length: size, Err: err}
	}
	if len(results) != 1 {
		return 0, 0, &MemoryAccessError{
			Operation: "alloc",
			Length:    size,
			Err:       fmt.Errorf("expected 1 result, got %d", len(results)),
		}
	}

	ptr := uint32(results[0])
	if !m.mem.Write(ptr, data) {
		return 0, 0, &MemoryAccessError{Operation: "write", Address: ptr, Length: size}
	}
	return ptr, size, nil
}

// Free releases a guest buffer. It is a no-op when the guest has no free export.
func (m *Memory) Free(ctx context.Context, ptr, size uint32) error {
	if m.free == nil || size == 0 {
		return nil
	}
	if _, err := m.free.Call(ctx, uint64(ptr), uint64(size)); err != nil {
		return &MemoryAccessError{Operation: "free", Address: ptr, Length: size, Err: err}
	}
	return nil
}

// UnpackPtrLen splits a packed guest buffer.
func UnpackPtrLen(v uint64) (ptr, length uint32) {
	return uint32(v >> 32), uint32(v)
}
