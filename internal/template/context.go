// Package template locates tagged template literals in host source and
// exposes each one as a fragment with its own coordinate space.
package template

import (
	"strings"

	lsp "go.lsp.dev/protocol"
)

// Delimiter opens and closes a template literal.
const Delimiter = "`"

// substitutionFiller replaces each byte of a ${...} substitution, keeping line
// breaks, so the stylesheet stays parseable and offsets line up.
const substitutionFiller = 'x'

// Translator converts between offsets into fragment text and positions in
// the fragment. Both directions are exact inverses within the text bounds.
type Translator interface {
	ToPosition(offset int) lsp.Position
	ToOffset(pos lsp.Position) int
}

// Context is one embedded region extracted from host source.
type Context interface {
	Translator

	// Text returns the fragment content between the delimiters, with
	// substitutions blanked.
	Text() string

	// NodeText returns the literal as written in the host, delimiters included.
	NodeText() string
}

// Fragment is a template literal found in a host document.
type Fragment struct {
	// Tag is the tag expression in front of the literal, e.g. "css" or "styled.div".
	Tag string

	// Start is the host byte offset of the opening delimiter.
	Start int

	// End is the host byte offset just past the closing delimiter.
	End int

	nodeText string
	text     string
	index    *LineIndex
}

// NewFragment creates a fragment from a literal as written in the host,
// delimiters included. Start and End are left at zero.
func NewFragment(nodeText string) *Fragment {
	return newFragment(nodeText, substitutionsIn(nodeText))
}

// newLocatedFragment creates a fragment at host offset start. Substitution
// ranges are host offsets.
func newLocatedFragment(tag, nodeText string, start int, substitutions []span) *Fragment {
	local := make([]span, len(substitutions))
	for i, s := range substitutions {
		local[i] = span{start: s.start - start, end: s.end - start}
	}

	f := newFragment(nodeText, local)
	f.Tag = tag
	f.Start = start
	f.End = start + len(nodeText)
	return f
}

// newFragment strips the delimiters and blanks each substitution (offsets
// relative to nodeText) with same-length filler.
func newFragment(nodeText string, substitutions []span) *Fragment {
	text := nodeText
	if len(nodeText) >= 2 && strings.HasPrefix(nodeText, Delimiter) && strings.HasSuffix(nodeText, Delimiter) {
		content := []byte(nodeText[len(Delimiter) : len(nodeText)-len(Delimiter)])
		for _, s := range substitutions {
			for i := s.start - len(Delimiter); i < s.end-len(Delimiter); i++ {
				if content[i] != '\n' && content[i] != '\r' {
					content[i] = substitutionFiller
				}
			}
		}
		text = string(content)
	}

	return &Fragment{
		nodeText: nodeText,
		text:     text,
		index:    NewLineIndex(text),
	}
}

// Text returns the fragment content between the delimiters. Each ${...}
// substitution is replaced by filler of the same byte length.
func (f *Fragment) Text() string {
	return f.text
}

// NodeText returns the literal including its delimiters.
func (f *Fragment) NodeText() string {
	return f.nodeText
}

// ToPosition converts a content offset to a fragment position.
func (f *Fragment) ToPosition(offset int) lsp.Position {
	return f.index.ToPosition(offset)
}

// ToOffset converts a fragment position to a content offset.
func (f *Fragment) ToOffset(pos lsp.Position) int {
	return f.index.ToOffset(pos)
}

// ContentStart returns the host byte offset of the first content byte.
func (f *Fragment) ContentStart() int {
	return f.Start + len(Delimiter)
}

// Contains reports whether a host cursor offset lies inside the literal,
// between the opening and the closing delimiter.
func (f *Fragment) Contains(offset int) bool {
	return offset > f.Start && offset < f.End
}

// PositionAtHostOffset converts a host byte offset inside the literal into a
// fragment position.
func (f *Fragment) PositionAtHostOffset(offset int) lsp.Position {
	return f.ToPosition(offset - f.ContentStart())
}
