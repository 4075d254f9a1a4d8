package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	lsp "go.lsp.dev/protocol"

	"github.com/woxQAQ/template-css-lsp/internal/template"
)

// recordingTranslator returns fixed values and remembers its inputs.
type recordingTranslator struct {
	offsets   []int
	positions []lsp.Position
}

func (r *recordingTranslator) ToPosition(offset int) lsp.Position {
	r.offsets = append(r.offsets, offset)
	return lsp.Position{Line: 42, Character: 7}
}

func (r *recordingTranslator) ToOffset(pos lsp.Position) int {
	r.positions = append(r.positions, pos)
	return 1234
}

func TestNew_LineCount(t *testing.T) {
	tests := []string{
		"",
		"a { color: red; }",
		"a {\n  color: red;\n}",
		"\n\n\n",
		"a {\n}\n",
	}

	for _, text := range tests {
		doc := New(text, template.NewLineIndex(text))
		assert.Equal(t, strings.Count(text, "\n")+2, doc.LineCount(), "text %q", text)
	}
}

func TestNew_Constants(t *testing.T) {
	doc := New("a {}", template.NewLineIndex("a {}"))

	assert.Equal(t, lsp.DocumentURI("untitled://embedded.scss"), doc.URI())
	assert.Equal(t, "scss", doc.LanguageID())
	assert.Equal(t, int32(1), doc.Version())
}

func TestNew_GetTextVerbatim(t *testing.T) {
	text := "  a {\r\n\tcolor: red;  \n}  "
	doc := New(text, template.NewLineIndex(text))

	assert.Equal(t, text, doc.GetText())
	assert.Equal(t, text, doc.GetText())
}

func TestDocument_DelegatesCoordinates(t *testing.T) {
	tr := &recordingTranslator{}
	doc := New("a {\n}", tr)

	assert.Equal(t, lsp.Position{Line: 42, Character: 7}, doc.PositionAt(3))
	assert.Equal(t, 1234, doc.OffsetAt(lsp.Position{Line: 1, Character: 0}))

	assert.Equal(t, []int{3}, tr.offsets)
	assert.Equal(t, []lsp.Position{{Line: 1, Character: 0}}, tr.positions)
}

func TestDocument_MultiLineConsistency(t *testing.T) {
	text := "a {\n  color: red;\n}"
	f := template.NewFragment("`" + text + "`")
	doc := New(f.Text(), f)

	for offset := 0; offset <= len(text); offset++ {
		assert.Equal(t, f.ToPosition(offset), doc.PositionAt(offset))
		assert.Equal(t, offset, doc.OffsetAt(doc.PositionAt(offset)))
	}
}
