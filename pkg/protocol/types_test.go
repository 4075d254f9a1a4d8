package protocol

import (
	"encoding/json"
	"testing"
)

func TestScriptElementKindValues(t *testing.T) {
	kinds := map[ScriptElementKind]string{
		ScriptElementKindUnknown:                   "",
		ScriptElementKindVariable:                  "var",
		ScriptElementKindConst:                     "const",
		ScriptElementKindMemberFunction:            "method",
		ScriptElementKindMemberVariable:            "property",
		ScriptElementKindConstructorImplementation: "constructor",
	}

	for kind, want := range kinds {
		if string(kind) != want {
			t.Errorf("Kind mismatch: got %q, want %q", kind, want)
		}
	}
}

func TestEmptyCompletionInfoEncoding(t *testing.T) {
	data, err := json.Marshal(EmptyCompletionInfo())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"isGlobalCompletion":false,"isMemberCompletion":false,"isNewIdentifierLocation":false,"entries":[]}`
	if string(data) != want {
		t.Errorf("Encoding mismatch:\n got %s\nwant %s", data, want)
	}
}

func TestCompletionEntryEncoding(t *testing.T) {
	entry := CompletionEntry{Name: "red", Kind: ScriptElementKindConst, SortText: "red"}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"name":"red","kind":"const","kindModifiers":"","sortText":"red"}`
	if string(data) != want {
		t.Errorf("Encoding mismatch:\n got %s\nwant %s", data, want)
	}
}

func TestRange(t *testing.T) {
	r := Range{
		Start: Position{Line: 0, Character: 0},
		End:   Position{Line: 1, Character: 5},
	}

	if r.Start.Line != 0 {
		t.Errorf("Start line mismatch: got %d, want %d", r.Start.Line, 0)
	}
	if r.End.Character != 5 {
		t.Errorf("End character mismatch: got %d, want %d", r.End.Character, 5)
	}
}
