package template

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	lsp "go.lsp.dev/protocol"
)

// LineIndex converts between byte offsets into a text and LSP positions.
// Columns are counted in UTF-16 code units.
//
// Out-of-range input is clamped: offsets below zero map to the start of the
// text, offsets past the end and lines past the last line map to the end,
// and characters past the end of a line map to the end of that line.
type LineIndex struct {
	text string
	// Byte offset of each line start.
	lines []int
}

// NewLineIndex builds a line index for text.
func NewLineIndex(text string) *LineIndex {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &LineIndex{text: text, lines: lines}
}

// ToPosition converts a byte offset to a position.
func (li *LineIndex) ToPosition(offset int) lsp.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}

	line := sort.Search(len(li.lines), func(i int) bool {
		return li.lines[i] > offset
	}) - 1

	return lsp.Position{
		Line:      uint32(line),
		Character: uint32(utf16Len(li.text[li.lines[line]:offset])),
	}
}

// ToOffset converts a position to a byte offset.
func (li *LineIndex) ToOffset(pos lsp.Position) int {
	line := int(pos.Line)
	if line >= len(li.lines) {
		return len(li.text)
	}

	start := li.lines[line]
	end := len(li.text)
	if line+1 < len(li.lines) {
		end = li.lines[line+1] - 1
	}
	// A CRLF line ends before its \r.
	if end > start && li.text[end-1] == '\r' {
		end--
	}

	want := int(pos.Character)
	units := 0
	for i, r := range li.text[start:end] {
		if units >= want {
			return start + i
		}
		units += runeUTF16Len(r)
	}
	return end
}

// LineCount returns the number of lines in the text.
func (li *LineIndex) LineCount() int {
	return len(li.lines)
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		n += runeUTF16Len(r)
		s = s[size:]
	}
	return n
}

func runeUTF16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
