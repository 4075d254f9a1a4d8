// Package engine adapts a stylesheet language engine to the bridge.
package engine

import (
	"context"

	lsp "go.lsp.dev/protocol"

	"github.com/woxQAQ/template-css-lsp/internal/document"
)

// Stylesheet is an engine's parsed form of a document. It is only
// meaningful to the engine that produced it.
type Stylesheet any

// Engine parses stylesheets and computes completions in them.
type Engine interface {
	ParseStylesheet(ctx context.Context, doc *document.Document) (Stylesheet, error)
	DoComplete(ctx context.Context, doc *document.Document, pos lsp.Position, sheet Stylesheet) (*lsp.CompletionList, error)
}

// Adapter holds one engine for the lifetime of the process.
type Adapter struct {
	engine Engine
}

// NewAdapter wraps an engine.
func NewAdapter(engine Engine) *Adapter {
	return &Adapter{engine: engine}
}

// Parse parses doc. Results are never cached; every request parses afresh.
func (a *Adapter) Parse(ctx context.Context, doc *document.Document) (Stylesheet, error) {
	return a.engine.ParseStylesheet(ctx, doc)
}

// Complete returns the engine's completion items at pos, in engine order.
// A nil list yields no items. Engine errors are returned as is.
func (a *Adapter) Complete(ctx context.Context, doc *document.Document, pos lsp.Position, sheet Stylesheet) ([]lsp.CompletionItem, error) {
	list, err := a.engine.DoComplete(ctx, doc, pos, sheet)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, nil
	}
	return list.Items, nil
}
