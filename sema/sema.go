// Package sema builds typed AST nodes from syntactic pieces the parser
// hands it, enforcing the language's type rules inline as each node is
// constructed. There is no separate semantic pass: parser.Parser holds a
// *Builder and calls it while descending the grammar, fusing the
// teacher's yparse/parser.go descent with ysem/analyzer.go's type-check
// functions into one pass, as the expanded spec requires.
package sema

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/cfront/cfront/diag"
	"github.com/cfront/cfront/scope"
)

// Mode mirrors original_source's Sema::Mode{Normal,Skip}: in ModeSkip,
// redefinition and lookup-failure diagnostics are suppressed so the
// parser can speculatively peek through ambiguous declarators.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSkip
)

// Builder is the per-compilation Sema collaborator. It owns the scope
// stack and the diagnostic bag; both the parser and the IR emitter's
// callers share the same Builder within one compilation.
type Builder struct {
	Scope *scope.Scope
	Diag  *diag.Bag
	Types *ctype.TypeTable

	mode Mode

	// loop/switch target stack mirrors the "stack of loop/switch nodes
	// during parsing" design note: break/continue record a weak reference
	// to whichever of these is innermost when they're built.
	targets []ast.LoopTarget
	// switches tracks the innermost active switch so case/default attach
	// to it; parallel to targets but only switch entries, since a loop
	// nested in a switch's body must not let case/default attach there.
	switches []*ast.SwitchStmt
}

// New creates a Builder with a fresh global scope.
func New() *Builder {
	return &Builder{Scope: scope.New(), Diag: &diag.Bag{}, Types: &ctype.TypeTable{}}
}

// SetMode flips skip mode on the Builder and its diagnostic bag together,
// so a speculative parse silences both lookup-failure and redefinition
// diagnostics symmetrically.
func (b *Builder) SetMode(m Mode) {
	b.mode = m
	if m == ModeSkip {
		b.Diag.SetMode(diag.ModeSkip)
	} else {
		b.Diag.SetMode(diag.ModeNormal)
	}
}

func (b *Builder) Mode() Mode { return b.mode }

func (b *Builder) EnterScope() { b.Scope.Enter() }
func (b *Builder) ExitScope()  { b.Scope.Exit() }

func (b *Builder) err(loc ast.Loc, kind diag.Kind, format string, args ...interface{}) *diag.Error {
	return b.Diag.Report(diag.Loc{File: loc.File, Line: loc.Line, Col: loc.Col}, kind, format, args...)
}
