package sema

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/cfront/cfront/diag"
	"github.com/cfront/cfront/scope"
)

// DeclareVar registers a variable in the ordinary namespace and builds its
// declaration node. Redefinition in the current environment is an error.
func (b *Builder) DeclareVar(loc ast.Loc, name string, ty *ctype.Type, isExtern, isStatic bool) (*ast.VarDecl, *diag.Error) {
	if _, ok := b.Scope.FindOrdinaryCurrent(name); ok && b.mode == ModeNormal {
		return nil, b.err(loc, diag.NameResolution, "redefinition of '%s'", name)
	}
	b.Scope.AddOrdinary(&scope.Symbol{Name: name, Kind: scope.KindVar, Type: ty})
	d := &ast.VarDecl{Name: name, Type: ty, IsGlobal: b.Scope.IsGlobal(), Extern: isExtern, Static: isStatic}
	d.Loc = loc
	return d, nil
}

// SetVarInit attaches flattened initializer entries to a variable decl.
func (b *Builder) SetVarInit(d *ast.VarDecl, entries []ast.InitEntry) {
	d.Inits = entries
}

// IsTypedefName reports whether name is a typedef alias visible in the
// current scope chain — the hook the parser calls to decide whether a
// leading identifier starts a declaration or an expression.
func (b *Builder) IsTypedefName(name string) bool {
	_, ok := b.Scope.FindTypedef(name)
	return ok
}

// ResolveTypedef returns the type a typedef name aliases.
func (b *Builder) ResolveTypedef(name string) (*ctype.Type, bool) {
	return b.Scope.FindTypedef(name)
}

// DeclareTypedef registers a new typedef alias.
func (b *Builder) DeclareTypedef(loc ast.Loc, name string, ty *ctype.Type) *diag.Error {
	if _, ok := b.Scope.FindTypedef(name); ok && b.mode == ModeNormal {
		return b.err(loc, diag.NameResolution, "redefinition of typedef '%s'", name)
	}
	b.Scope.AddTypedef(name, ty)
	return nil
}

// TagAccess resolves a bare `struct Foo` / `union Foo` reference, allowing
// forward reference to an as-yet-incomplete tag (`struct S;` followed
// later by its body).
func (b *Builder) TagAccess(loc ast.Loc, name string, tag ctype.TagKind) *ctype.Type {
	if t, ok := b.Scope.FindTag(name); ok {
		return t
	}
	t := ctype.NewRecord(name, tag)
	b.Scope.AddTag(name, t)
	return t
}

// TagDecl completes a tag's body. A second body on an already-complete tag
// is rejected; completing a previously-forward-declared (empty) tag is
// accepted.
func (b *Builder) TagDecl(loc ast.Loc, name string, tag ctype.TagKind, members []ctype.Member) (*ctype.Type, *diag.Error) {
	t, existed := b.Scope.FindTagCurrent(name)
	if !existed {
		t = ctype.NewRecord(name, tag)
		b.Scope.AddTag(name, t)
	}
	if len(t.Members) > 0 {
		return nil, b.err(loc, diag.NameResolution, "redefinition of '%s %s'", tag, name)
	}
	for _, m := range members {
		t.AddMember(m.Name, m.Type)
	}
	return t, nil
}

// AnonTagDecl builds an anonymous struct/union with a synthesized name.
func (b *Builder) AnonTagDecl(tag ctype.TagKind, members []ctype.Member) *ctype.Type {
	name := b.Types.NewAnonName(tag)
	t := ctype.NewRecord(name, tag)
	for _, m := range members {
		t.AddMember(m.Name, m.Type)
	}
	return t
}

// DeclareFunc registers a function symbol, applying the
// redeclare-without-body-then-define-once rule: a prior declaration of
// matching type without a body may be followed by exactly one definition.
func (b *Builder) DeclareFunc(loc ast.Loc, name string, ty *ctype.Type, hasBody bool) (*ast.FuncDecl, *diag.Error) {
	if sym, ok := b.Scope.FindOrdinaryCurrent(name); ok {
		prev := sym.Type
		if !prev.IsFunction() || !prev.Equal(ty) {
			return nil, b.err(loc, diag.NameResolution, "conflicting declaration of '%s'", name)
		}
		if hasBody && prev.HasBody {
			return nil, b.err(loc, diag.NameResolution, "redefinition of function '%s'", name)
		}
		if hasBody {
			prev.HasBody = true
		}
		ty = prev
	} else {
		ty.HasBody = hasBody
		b.Scope.AddOrdinary(&scope.Symbol{Name: name, Kind: scope.KindFunc, Type: ty})
	}
	d := &ast.FuncDecl{Name: name, Type: ty}
	d.Loc = loc
	return d, nil
}

// BindParams binds each parameter name as an ordinary local symbol in the
// current scope; it pushes no scope itself, so the caller enters the
// function-body scope first.
func (b *Builder) BindParams(ft *ctype.Type, names []string) {
	for i, p := range ft.Params {
		name := p.Name
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		if name == "" {
			continue
		}
		b.Scope.AddOrdinary(&scope.Symbol{Name: name, Kind: scope.KindVar, Type: p.Type})
	}
}
