package sema

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/cfront/cfront/diag"
)

// FlattenInit implements the initializer-flattening algorithm: a
// declarator followed by `=` recurses over the declared type, producing a
// flat list of {sub-type, expression, index path} triples that the IR
// emitter consumes directly, collapsing however deeply `{...}` was nested
// in the source.
func (b *Builder) FlattenInit(loc ast.Loc, ty *ctype.Type, raw ast.RawInit) ([]ast.InitEntry, *diag.Error) {
	return b.flatten(loc, ty, raw, nil)
}

func (b *Builder) flatten(loc ast.Loc, ty *ctype.Type, raw ast.RawInit, path []int) ([]ast.InitEntry, *diag.Error) {
	switch {
	case ty.IsArray() && ty.Elem == ctype.CharType && raw.Scalar != nil:
		if s, ok := raw.Scalar.(*ast.StringExpr); ok {
			return b.flattenCharArrayFromString(loc, ty, s, path)
		}
		fallthrough
	case ty.IsArray():
		return b.flattenArray(loc, ty, raw, path)
	case ty.IsRecord():
		return b.flattenRecord(loc, ty, raw, path)
	default:
		return b.flattenScalar(loc, ty, raw, path)
	}
}

// flattenScalar handles `x = e` (and the C-legal braced single-element
// form `x = {e}`).
func (b *Builder) flattenScalar(loc ast.Loc, ty *ctype.Type, raw ast.RawInit, path []int) ([]ast.InitEntry, *diag.Error) {
	val := raw.Scalar
	if val == nil {
		if len(raw.List) != 1 || raw.List[0].Scalar == nil {
			return nil, b.err(loc, diag.Type, "invalid initializer for scalar type %s", ty)
		}
		val = raw.List[0].Scalar
	}
	if !ctype.IsCompatibleAssign(ty, val.GetType().DecayToPointer()) {
		return nil, b.err(loc, diag.Type, "incompatible initializer type (%s = %s)", ty, val.GetType())
	}
	p := path
	if len(p) == 0 {
		p = []int{0}
	}
	return []ast.InitEntry{{Type: ty, Value: val, Path: append([]int{}, p...)}}, nil
}

// flattenArray handles `T[N] = { e0, e1, ... }` and `int a[] = {...}`
// length inference.
func (b *Builder) flattenArray(loc ast.Loc, ty *ctype.Type, raw ast.RawInit, path []int) ([]ast.InitEntry, *diag.Error) {
	if raw.List == nil {
		return nil, b.err(loc, diag.Type, "array initializer must be a brace-enclosed list")
	}
	if ty.ArrayLen < 0 {
		ty.SetArrayLen(len(raw.List))
	} else if len(raw.List) > ty.ArrayLen {
		return nil, b.err(loc, diag.Type, "excess elements in array initializer")
	}
	var entries []ast.InitEntry
	for i, sub := range raw.List {
		childPath := append(append([]int{}, path...), i)
		sub_entries, err := b.flatten(loc, ty.Elem, sub, childPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub_entries...)
	}
	return entries, nil
}

// flattenRecord handles `{m0:T0, m1:T1, ...} = {e0, e1, ...}` for structs,
// and the union rule where only the first member is ever initialized.
func (b *Builder) flattenRecord(loc ast.Loc, ty *ctype.Type, raw ast.RawInit, path []int) ([]ast.InitEntry, *diag.Error) {
	if raw.List == nil {
		return nil, b.err(loc, diag.Type, "record initializer must be a brace-enclosed list")
	}
	if ty.Tag == ctype.Union {
		if len(raw.List) > 1 {
			return nil, b.err(loc, diag.Type, "union initializer may only set one member")
		}
		if len(raw.List) == 0 || len(ty.Members) == 0 {
			return nil, nil
		}
		childPath := append(append([]int{}, path...), 0)
		return b.flatten(loc, ty.Members[0].Type, raw.List[0], childPath)
	}
	if len(raw.List) > len(ty.Members) {
		return nil, b.err(loc, diag.Type, "excess elements in struct initializer")
	}
	var entries []ast.InitEntry
	for i, sub := range raw.List {
		childPath := append(append([]int{}, path...), i)
		sub_entries, err := b.flatten(loc, ty.Members[i].Type, sub, childPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub_entries...)
	}
	return entries, nil
}

// flattenCharArrayFromString implements `char s[] = "hi"`: each character
// plus a trailing NUL if room; exceeding the declared size is an error; an
// incomplete array's length becomes strlen+1.
func (b *Builder) flattenCharArrayFromString(loc ast.Loc, ty *ctype.Type, s *ast.StringExpr, path []int) ([]ast.InitEntry, *diag.Error) {
	str := s.Value
	need := len(str) + 1
	if ty.ArrayLen < 0 {
		ty.SetArrayLen(need)
	} else if need > ty.ArrayLen && len(str) > ty.ArrayLen {
		return nil, b.err(loc, diag.Type, "initializer-string for char array is too long")
	}
	var entries []ast.InitEntry
	limit := ty.ArrayLen
	for i := 0; i < len(str) && i < limit; i++ {
		ch := &ast.NumberExpr{IVal: int64(str[i])}
		ch.Loc = loc
		ch.SetType(ctype.CharType)
		childPath := append(append([]int{}, path...), i)
		entries = append(entries, ast.InitEntry{Type: ctype.CharType, Value: ch, Path: childPath})
	}
	if len(str) < limit {
		nul := &ast.NumberExpr{IVal: 0}
		nul.Loc = loc
		nul.SetType(ctype.CharType)
		childPath := append(append([]int{}, path...), len(str))
		entries = append(entries, ast.InitEntry{Type: ctype.CharType, Value: nul, Path: childPath})
	}
	return entries, nil
}
