package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lsp "go.lsp.dev/protocol"
)

const hostSource = "import { css } from 'styled'\n" +
	"const a = 1 // `not a template`\n" +
	"const b = css`\n  color: red;\n`\n" +
	"const c = styled.div`display: flex;`\n" +
	"const d = html`<div></div>`\n" +
	"const e = \"css`nope`\"\n" +
	"const f = css /* tag */ ``\n"

func TestLocator_Locate(t *testing.T) {
	l := NewLocator([]string{"css", "styled"})

	fragments, err := l.Locate(hostSource)
	require.NoError(t, err)
	require.Len(t, fragments, 3)

	assert.Equal(t, "css", fragments[0].Tag)
	assert.Equal(t, "\n  color: red;\n", fragments[0].Text())
	assert.Equal(t, strings.Index(hostSource, "css`\n")+len("css"), fragments[0].Start)
	assert.Equal(t, fragments[0].Start+len(fragments[0].NodeText()), fragments[0].End)

	assert.Equal(t, "styled.div", fragments[1].Tag)
	assert.Equal(t, "display: flex;", fragments[1].Text())

	assert.Equal(t, "css", fragments[2].Tag)
	assert.Equal(t, "``", fragments[2].NodeText())
	assert.Equal(t, "", fragments[2].Text())
}

func TestLocator_IgnoresUnknownTags(t *testing.T) {
	l := NewLocator([]string{"css"})

	fragments, err := l.Locate("const x = html`a`; const y = `b`; const z = cssx`c`")
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestLocator_FragmentAt(t *testing.T) {
	l := NewLocator([]string{"css"})

	inside := strings.Index(hostSource, "color")
	f, ok, err := l.FragmentAt(hostSource, inside)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lsp.Position{Line: 1, Character: 2}, f.PositionAtHostOffset(inside))

	outside := strings.Index(hostSource, "<div>")
	_, ok, err = l.FragmentAt(hostSource, outside)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocator_FragmentAt_EmptyTemplate(t *testing.T) {
	l := NewLocator([]string{"css"})
	source := "const f = css``"

	// Cursor between the two delimiters.
	f, ok, err := l.FragmentAt(source, len(source)-1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "``", f.NodeText())

	// Cursor after the closing delimiter is outside.
	_, ok, err = l.FragmentAt(source, len(source))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocator_Matches(t *testing.T) {
	l := NewLocator([]string{"css", "styled"})

	assert.True(t, l.Matches("css"))
	assert.True(t, l.Matches("styled.button"))
	assert.False(t, l.Matches("cssx"))
	assert.False(t, l.Matches("theme.css"))
}

func TestNewFragment(t *testing.T) {
	f := NewFragment("`a {\n}`")

	assert.Equal(t, "a {\n}", f.Text())
	assert.Equal(t, "`a {\n}`", f.NodeText())
	assert.Equal(t, lsp.Position{Line: 1, Character: 0}, f.ToPosition(4))
	assert.Equal(t, 4, f.ToOffset(lsp.Position{Line: 1, Character: 0}))
}

func TestLocator_Substitutions(t *testing.T) {
	l := NewLocator([]string{"css"})

	tests := []struct {
		name   string
		source string
		text   string
	}{
		{
			name:   "plain",
			source: "css`color: ${c};`",
			text:   "color: xxxx;",
		},
		{
			name:   "nested templates",
			source: "css`a { color: ${x ? `red` : `blue`}; }`",
			text:   "a { color: " + strings.Repeat("x", len("${x ? `red` : `blue`}")) + "; }",
		},
		{
			name:   "braces and strings",
			source: "css`a: ${ {b: '`'}.b };`",
			text:   "a: " + strings.Repeat("x", len("${ {b: '`'}.b }")) + ";",
		},
		{
			name:   "line breaks kept",
			source: "css`a: ${f(\n1)};`",
			text:   "a: xxxx\nxxx;",
		},
		{
			name:   "dollar without brace",
			source: "css`width: $w; ${c}`",
			text:   "width: $w; xxxx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragments, err := l.Locate(tt.source)
			require.NoError(t, err)
			require.Len(t, fragments, 1)

			f := fragments[0]
			assert.Equal(t, tt.source[len("css"):], f.NodeText())
			assert.Equal(t, tt.text, f.Text())
			assert.Equal(t, len(tt.source), f.End)
			assert.Len(t, f.Text(), len(f.NodeText())-2)
		})
	}
}

func TestLocator_SubstitutionOffsetsLineUp(t *testing.T) {
	l := NewLocator([]string{"css"})
	source := "const b = css`a { color: ${c}; b`"

	cursor := strings.LastIndex(source, "b")
	f, ok, err := l.FragmentAt(source, cursor)
	require.NoError(t, err)
	require.True(t, ok)

	pos := f.PositionAtHostOffset(cursor)
	assert.Equal(t, byte('b'), f.Text()[f.ToOffset(pos)])
}

func TestLocator_NestedTaggedTemplate(t *testing.T) {
	l := NewLocator([]string{"css"})
	source := "css`a { ${css`color: red;`} }`"

	fragments, err := l.Locate(source)
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, "a { "+strings.Repeat("x", len("${css`color: red;`}"))+" }", fragments[0].Text())
	assert.Equal(t, "color: red;", fragments[1].Text())

	// The innermost literal wins.
	f, ok, err := l.FragmentAt(source, strings.Index(source, "color"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "color: red;", f.Text())
}

func TestLocator_UnterminatedTemplate(t *testing.T) {
	l := NewLocator([]string{"css"})

	for _, source := range []string{"css`color: ${c", "css`color: red"} {
		fragments, err := l.Locate(source)
		require.NoError(t, err)
		assert.Empty(t, fragments, source)
	}
}

func TestNewFragment_Substitutions(t *testing.T) {
	f := NewFragment("`color: ${c};`")

	assert.Equal(t, "color: xxxx;", f.Text())
	assert.Equal(t, "`color: ${c};`", f.NodeText())

	// Not a single literal: delimiters are stripped, nothing is blanked.
	g := NewFragment("`a` + `${b}`")
	assert.Equal(t, "a` + `${b}", g.Text())
}
