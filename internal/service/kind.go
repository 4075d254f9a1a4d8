package service

import (
	lsp "go.lsp.dev/protocol"

	"github.com/woxQAQ/template-css-lsp/pkg/protocol"
)

// kindTable maps stylesheet completion kinds to host element kinds.
var kindTable = map[lsp.CompletionItemKind]protocol.ScriptElementKind{
	lsp.CompletionItemKindMethod:      protocol.ScriptElementKindMemberFunction,
	lsp.CompletionItemKindFunction:    protocol.ScriptElementKindFunction,
	lsp.CompletionItemKindConstructor: protocol.ScriptElementKindConstructorImplementation,
	lsp.CompletionItemKindField:       protocol.ScriptElementKindVariable,
	lsp.CompletionItemKindVariable:    protocol.ScriptElementKindVariable,
	lsp.CompletionItemKindClass:       protocol.ScriptElementKindClass,
	lsp.CompletionItemKindInterface:   protocol.ScriptElementKindInterface,
	lsp.CompletionItemKindModule:      protocol.ScriptElementKindModule,
	lsp.CompletionItemKindProperty:    protocol.ScriptElementKindMemberVariable,
	lsp.CompletionItemKindUnit:        protocol.ScriptElementKindConst,
	lsp.CompletionItemKindValue:       protocol.ScriptElementKindConst,
	lsp.CompletionItemKindEnum:        protocol.ScriptElementKindEnum,
	lsp.CompletionItemKindKeyword:     protocol.ScriptElementKindKeyword,
	lsp.CompletionItemKindColor:       protocol.ScriptElementKindConst,
	lsp.CompletionItemKindFile:        protocol.ScriptElementKindModule,
	lsp.CompletionItemKindReference:   protocol.ScriptElementKindAlias,
}

// TranslateCompletionItemKind returns the host element kind for a stylesheet
// completion kind. Zero, Snippet, Text and any kind not in the table map to
// ScriptElementKindUnknown.
func TranslateCompletionItemKind(kind lsp.CompletionItemKind) protocol.ScriptElementKind {
	if k, ok := kindTable[kind]; ok {
		return k
	}
	return protocol.ScriptElementKindUnknown
}
