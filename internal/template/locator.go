package template

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// hostLexer splits host source into just enough tokens to find template
// literals and the tag expressions in front of them. Comments and ordinary
// strings are matched before backticks so backticks inside them are ignored.
// Substitutions (${...}) are lexed as code with brace depth, so templates and
// strings nested inside them do not end the enclosing literal.
var hostLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		lexer.Include("Code"),
		{Name: "Punct", Pattern: `[\s\S]`},
	},
	"Code": {
		{Name: "Comment", Pattern: `//[^\n]*|/\*[\s\S]*?\*/`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'`},
		{Name: "TemplateStart", Pattern: "`", Action: lexer.Push("Template")},
		{Name: "Ident", Pattern: `[A-Za-z_$][A-Za-z0-9_$]*`},
		{Name: "Whitespace", Pattern: `\s+`},
	},
	"Template": {
		{Name: "TemplateEnd", Pattern: "`", Action: lexer.Pop()},
		{Name: "SubstStart", Pattern: `\$\{`, Action: lexer.Push("Expr")},
		{Name: "Chars", Pattern: "(?:\\\\[\\s\\S]|[^`\\\\$])+|\\$|\\\\"},
	},
	"Expr": {
		{Name: "LBrace", Pattern: `\{`, Action: lexer.Push("Expr")},
		{Name: "RBrace", Pattern: `\}`, Action: lexer.Pop()},
		lexer.Include("Code"),
		{Name: "Punct", Pattern: `[\s\S]`},
	},
})

var (
	tokTemplateStart = hostLexer.Symbols()["TemplateStart"]
	tokTemplateEnd   = hostLexer.Symbols()["TemplateEnd"]
	tokSubstStart    = hostLexer.Symbols()["SubstStart"]
	tokLBrace        = hostLexer.Symbols()["LBrace"]
	tokRBrace        = hostLexer.Symbols()["RBrace"]
	tokIdent         = hostLexer.Symbols()["Ident"]
	tokComment       = hostLexer.Symbols()["Comment"]
	tokWhitespace    = hostLexer.Symbols()["Whitespace"]
)

// Locator finds template literals tagged with one of a fixed set of tags.
type Locator struct {
	tags []string
}

// NewLocator creates a locator for the given tag names.
func NewLocator(tags []string) *Locator {
	t := make([]string, len(tags))
	copy(t, tags)
	return &Locator{tags: t}
}

// Tags returns the tag names this locator matches.
func (l *Locator) Tags() []string {
	t := make([]string, len(l.tags))
	copy(t, l.tags)
	return t
}

// Locate returns every tagged template literal in source, in source order.
// Tagged literals nested inside substitutions are returned too.
func (l *Locator) Locate(source string) ([]*Fragment, error) {
	tokens, err := lexHost(source)
	if err != nil {
		return nil, err
	}

	var fragments []*Fragment
	for i, tok := range tokens {
		if tok.Type != tokTemplateStart {
			continue
		}
		lit, ok := scanLiteral(tokens[i:])
		if !ok {
			continue
		}
		tag, ok := tagBefore(tokens[:i])
		if !ok || !l.Matches(tag) {
			continue
		}
		start := tok.Pos.Offset
		fragments = append(fragments, newLocatedFragment(tag, source[start:lit.end], start, lit.substitutions))
	}
	return fragments, nil
}

// FragmentAt returns the innermost tagged literal containing a host byte
// offset.
func (l *Locator) FragmentAt(source string, offset int) (*Fragment, bool, error) {
	fragments, err := l.Locate(source)
	if err != nil {
		return nil, false, err
	}

	var found *Fragment
	for _, f := range fragments {
		if f.Contains(offset) {
			found = f
		}
	}
	return found, found != nil, nil
}

// Matches reports whether a tag expression belongs to this locator.
// "styled.div" matches the tag "styled".
func (l *Locator) Matches(tag string) bool {
	for _, t := range l.tags {
		if tag == t || strings.HasPrefix(tag, t+".") {
			return true
		}
	}
	return false
}

// tagBefore reads the identifier chain (a.b.c) that ends right before the
// template token, skipping whitespace and comments.
func tagBefore(tokens []lexer.Token) (string, bool) {
	var parts []string
	expectIdent := true

	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if tok.Type == tokWhitespace || tok.Type == tokComment {
			continue
		}
		if expectIdent {
			if tok.Type != tokIdent {
				break
			}
			parts = append(parts, tok.Value)
			expectIdent = false
			continue
		}
		if tok.Value != "." {
			break
		}
		expectIdent = true
	}

	if len(parts) == 0 {
		return "", false
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "."), true
}

func lexHost(source string) ([]lexer.Token, error) {
	lex, err := hostLexer.LexString("", source)
	if err != nil {
		return nil, fmt.Errorf("failed to lex host source: %w", err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("failed to lex host source: %w", err)
	}
	return tokens, nil
}

// span is a half-open byte range.
type span struct {
	start, end int
}

type literal struct {
	// end is the byte offset just past the closing delimiter.
	end int

	// substitutions are the top-level ${...} ranges, braces included.
	substitutions []span
}

// scanLiteral follows a template literal from its opening delimiter, which
// must be tokens[0]. It reports false when the literal is unterminated.
func scanLiteral(tokens []lexer.Token) (literal, bool) {
	var (
		lit   literal
		depth int
	)
	for _, tok := range tokens {
		switch tok.Type {
		case tokTemplateStart, tokLBrace:
			depth++
		case tokSubstStart:
			depth++
			if depth == 2 {
				lit.substitutions = append(lit.substitutions, span{start: tok.Pos.Offset})
			}
		case tokTemplateEnd, tokRBrace:
			depth--
			switch {
			case depth == 0:
				lit.end = tok.Pos.Offset + len(tok.Value)
				return lit, true
			case depth == 1 && tok.Type == tokRBrace:
				lit.substitutions[len(lit.substitutions)-1].end = tok.Pos.Offset + len(tok.Value)
			}
		}
	}
	return literal{}, false
}

// substitutionsIn returns the substitution ranges of a literal written with
// its delimiters, or nil when nodeText is not a single complete literal.
func substitutionsIn(nodeText string) []span {
	tokens, err := lexHost(nodeText)
	if err != nil || len(tokens) == 0 || tokens[0].Type != tokTemplateStart {
		return nil
	}
	lit, ok := scanLiteral(tokens)
	if !ok || lit.end != len(nodeText) {
		return nil
	}
	return lit.substitutions
}
