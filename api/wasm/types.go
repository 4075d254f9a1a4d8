package wasm

import (
	lsp "go.lsp.dev/protocol"
)

// Export names every engine add-on provides.
const (
	ExportAlloc    = "alloc"
	ExportFree     = "free"
	ExportParse    = "parse"
	ExportComplete = "complete"
)

// HostModule is the import module name for host functions.
const HostModule = "host"

// DocumentPayload is the virtual document as sent to the guest.
type DocumentPayload struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int32  `json:"version"`
	LineCount  int    `json:"lineCount"`
	Text       string `json:"text"`
}

// ParseRequest asks the guest to parse a stylesheet.
type ParseRequest struct {
	Document DocumentPayload `json:"document"`
}

// ParseResponse carries a guest-side handle to the parsed stylesheet.
type ParseResponse struct {
	Handle uint32 `json:"handle"`
	Error  string `json:"error,omitempty"`
}

// CompleteRequest asks for completions at a position in a parsed stylesheet.
type CompleteRequest struct {
	Document DocumentPayload `json:"document"`
	Position lsp.Position    `json:"position"`
	Handle   uint32          `json:"handle"`
}

// CompleteResponse carries the engine's completion list.
type CompleteResponse struct {
	List  *lsp.CompletionList `json:"list,omitempty"`
	Error string              `json:"error,omitempty"`
}
