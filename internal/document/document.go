// Package document builds the standalone stylesheet document handed to the
// embedded engine for one fragment.
package document

import (
	"strings"

	lsp "go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/woxQAQ/template-css-lsp/internal/template"
)

const (
	// URI names every virtual document. Only one exists per request.
	URI = uri.URI("untitled://embedded.scss")

	// LanguageID is the stylesheet dialect the engine parses.
	LanguageID = "scss"

	// Version is fixed; nothing is retained between requests.
	Version = 1
)

// Document is a read-only stylesheet view of one fragment.
type Document struct {
	text       string
	lineCount  int
	translator template.Translator
}

// New creates a document over text, converting coordinates with tr.
func New(text string, tr template.Translator) *Document {
	return &Document{
		text: text,
		// One more than the number of lines. The engine relies on this count.
		lineCount:  len(strings.Split(text, "\n")) + 1,
		translator: tr,
	}
}

// URI returns the document URI.
func (d *Document) URI() lsp.DocumentURI {
	return URI
}

// LanguageID returns the document language.
func (d *Document) LanguageID() string {
	return LanguageID
}

// Version returns the document version.
func (d *Document) Version() int32 {
	return Version
}

// LineCount returns the line count reported to the engine.
func (d *Document) LineCount() int {
	return d.lineCount
}

// GetText returns the fragment text verbatim.
func (d *Document) GetText() string {
	return d.text
}

// PositionAt converts an offset into a position.
func (d *Document) PositionAt(offset int) lsp.Position {
	return d.translator.ToPosition(offset)
}

// OffsetAt converts a position into an offset.
func (d *Document) OffsetAt(pos lsp.Position) int {
	return d.translator.ToOffset(pos)
}
