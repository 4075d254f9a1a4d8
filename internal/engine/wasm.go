package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	lsp "go.lsp.dev/protocol"
	"go.uber.org/zap"

	abi "github.com/woxQAQ/template-css-lsp/api/wasm"
	"github.com/woxQAQ/template-css-lsp/internal/document"
	"github.com/woxQAQ/template-css-lsp/internal/wasm"
)

// WasmEngine runs a stylesheet engine add-on. The parsed stylesheet is a
// handle into guest memory.
type WasmEngine struct {
	instance *wasm.Instance
	logger   *zap.Logger

	// Guest instances are single-threaded.
	mu sync.Mutex
}

// NewWasmEngine binds an instantiated add-on. The add-on must export parse
// and complete.
func NewWasmEngine(instance *wasm.Instance, logger *zap.Logger) (*WasmEngine, error) {
	for _, name := range []string{abi.ExportParse, abi.ExportComplete} {
		if !instance.HasExport(name) {
			return nil, &wasm.FunctionNotFoundError{ModuleName: instance.Name, FunctionName: name}
		}
	}

	return &WasmEngine{
		instance: instance,
		logger: logger.With(
			zap.String("component", "wasm-engine"),
			zap.String("addon", instance.Name),
		),
	}, nil
}

// ParseStylesheet implements Engine.
func (e *WasmEngine) ParseStylesheet(ctx context.Context, doc *document.Document) (Stylesheet, error) {
	var resp abi.ParseResponse
	req := abi.ParseRequest{Document: payload(doc)}
	if err := e.call(ctx, abi.ExportParse, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &wasm.GuestError{
			ModuleName:   e.instance.Name,
			FunctionName: abi.ExportParse,
			Message:      resp.Error,
		}
	}
	return resp.Handle, nil
}

// DoComplete implements Engine.
func (e *WasmEngine) DoComplete(ctx context.Context, doc *document.Document, pos lsp.Position, sheet Stylesheet) (*lsp.CompletionList, error) {
	handle, ok := sheet.(uint32)
	if !ok {
		return nil, fmt.Errorf("stylesheet of type %T was not parsed by add-on '%s'", sheet, e.instance.Name)
	}

	var resp abi.CompleteResponse
	req := abi.CompleteRequest{
		Document: payload(doc),
		Position: pos,
		Handle:   handle,
	}
	if err := e.call(ctx, abi.ExportComplete, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &wasm.GuestError{
			ModuleName:   e.instance.Name,
			FunctionName: abi.ExportComplete,
			Message:      resp.Error,
		}
	}
	return resp.List, nil
}

// Close releases the add-on instance.
func (e *WasmEngine) Close(ctx context.Context) error {
	return e.instance.Close(ctx)
}

func (e *WasmEngine) call(ctx context.Context, fn string, req, resp any) error {
	in, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", fn, err)
	}

	e.mu.Lock()
	out, err := e.instance.Call(ctx, fn, in)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(out, resp); err != nil {
		e.logger.Debug("Undecodable guest response",
			zap.String("function", fn),
			zap.ByteString("response", out),
		)
		return &wasm.CallError{
			ModuleName:   e.instance.Name,
			FunctionName: fn,
			Err:          fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

func payload(doc *document.Document) abi.DocumentPayload {
	return abi.DocumentPayload{
		URI:        string(doc.URI()),
		LanguageID: doc.LanguageID(),
		Version:    doc.Version(),
		LineCount:  doc.LineCount(),
		Text:       doc.GetText(),
	}
}
