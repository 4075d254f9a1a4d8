package protocol

// Host-side completion vocabulary for the template CSS bridge.
// These shapes mirror what the host analysis service hands to its editors.

// Position represents a position in a host document.
// Character is measured in UTF-16 code units.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range represents a range in a host document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// ScriptElementKind is the host's completion entry category.
type ScriptElementKind string

const (
	ScriptElementKindUnknown                   ScriptElementKind = ""
	ScriptElementKindKeyword                   ScriptElementKind = "keyword"
	ScriptElementKindModule                    ScriptElementKind = "module"
	ScriptElementKindClass                     ScriptElementKind = "class"
	ScriptElementKindInterface                 ScriptElementKind = "interface"
	ScriptElementKindEnum                      ScriptElementKind = "enum"
	ScriptElementKindVariable                  ScriptElementKind = "var"
	ScriptElementKindConst                     ScriptElementKind = "const"
	ScriptElementKindFunction                  ScriptElementKind = "function"
	ScriptElementKindMemberFunction            ScriptElementKind = "method"
	ScriptElementKindMemberVariable            ScriptElementKind = "property"
	ScriptElementKindConstructorImplementation ScriptElementKind = "constructor"
	ScriptElementKindAlias                     ScriptElementKind = "alias"
)

// CompletionEntry represents a single host completion entry
type CompletionEntry struct {
	Name          string            `json:"name"`
	Kind          ScriptElementKind `json:"kind"`
	KindModifiers string            `json:"kindModifiers"`
	SortText      string            `json:"sortText"`
}

// CompletionInfo is the host completion result.
type CompletionInfo struct {
	IsGlobalCompletion      bool              `json:"isGlobalCompletion"`
	IsMemberCompletion      bool              `json:"isMemberCompletion"`
	IsNewIdentifierLocation bool              `json:"isNewIdentifierLocation"`
	Entries                 []CompletionEntry `json:"entries"`
}

// EmptyCompletionInfo returns a result with no entries and all flags unset.
// Entries is non-nil so it encodes as [].
func EmptyCompletionInfo() *CompletionInfo {
	return &CompletionInfo{Entries: []CompletionEntry{}}
}
