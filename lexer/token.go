// Package lexer is the boundary token-stream producer. It is kept
// functional but minimal per spec.md's scope (the lexer itself is an
// external collaborator); the one requirement the rest of the front end
// depends on is a save/restore facility so the parser can speculatively
// peek through ambiguous declarators and rewind. Grounded on the
// teacher's byte-at-a-time lexer (ylex/lexer.go: peek/advance/scanNumber/
// scanEscape/scanString), generalized from YAPL's fixed 16-bit literal
// folding to full C numeric-literal typing and escape handling.
package lexer

import "github.com/cfront/cfront/ctype"

type Kind int

const (
	EOF Kind = iota
	Ident
	Keyword
	IntLit
	FloatLit
	CharLit
	StringLit
	Punct
)

// Token is the unit the parser consumes.
type Token struct {
	Kind   Kind
	Text   string // source slice (identifier/keyword/punctuator spelling)
	Line   int
	Col    int
	File   string

	IVal    int64
	DVal    float64
	SVal    string // decoded string literal value (a char literal's value is in IVal)
	NumType *ctype.Type // numeric literal's promoted type, per the literal rule
}

var keywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"struct": true, "union": true, "typedef": true, "extern": true,
	"static": true, "auto": true, "register": true, "const": true,
	"volatile": true, "inline": true, "sizeof": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "break": true,
	"continue": true, "return": true,
}

func IsKeyword(s string) bool { return keywords[s] }
