// Package service answers host completion requests inside template literal
// fragments by delegating to a stylesheet engine.
package service

import (
	"context"

	lsp "go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/woxQAQ/template-css-lsp/internal/document"
	"github.com/woxQAQ/template-css-lsp/internal/engine"
	"github.com/woxQAQ/template-css-lsp/internal/template"
	"github.com/woxQAQ/template-css-lsp/pkg/protocol"
)

// emptyTemplate is the literal the host reports for a freshly typed pair of
// backticks. Requests inside it never reach the engine.
const emptyTemplate = template.Delimiter + template.Delimiter

// Service bridges host completion requests to the stylesheet engine.
// It keeps no per-request state and is safe for concurrent use if the
// engine is.
type Service struct {
	adapter *engine.Adapter
	logger  *zap.Logger
}

// New creates a service over a long-lived engine.
func New(eng engine.Engine, logger *zap.Logger) *Service {
	return &Service{
		adapter: engine.NewAdapter(eng),
		logger:  logger.With(zap.String("component", "completion-service")),
	}
}

// GetCompletionsAtPosition returns completions for pos, given in fragment
// coordinates. The position reaches the engine as given and engine errors
// are returned unchanged.
func (s *Service) GetCompletionsAtPosition(ctx context.Context, fragment template.Context, pos lsp.Position) (*protocol.CompletionInfo, error) {
	if fragment.NodeText() == emptyTemplate {
		return protocol.EmptyCompletionInfo(), nil
	}

	doc := document.New(fragment.Text(), fragment)

	sheet, err := s.adapter.Parse(ctx, doc)
	if err != nil {
		return nil, err
	}

	items, err := s.adapter.Complete(ctx, doc, pos, sheet)
	if err != nil {
		return nil, err
	}

	info := protocol.EmptyCompletionInfo()
	info.Entries = make([]protocol.CompletionEntry, 0, len(items))
	for _, item := range items {
		info.Entries = append(info.Entries, translateCompletionEntry(item))
	}

	s.logger.Debug("Completions computed",
		zap.Uint32("line", pos.Line),
		zap.Uint32("character", pos.Character),
		zap.Int("entries", len(info.Entries)),
	)

	return info, nil
}

func translateCompletionEntry(item lsp.CompletionItem) protocol.CompletionEntry {
	sortText := item.SortText
	if sortText == "" {
		sortText = item.Label
	}
	return protocol.CompletionEntry{
		Name:          item.Label,
		Kind:          TranslateCompletionItemKind(item.Kind),
		KindModifiers: "",
		SortText:      sortText,
	}
}
