package sema

import (
	"testing"

	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/stretchr/testify/require"
)

func loc() ast.Loc { return ast.Loc{File: "t.c", Line: 1} }

func TestPointerPlusIntAndSwap(t *testing.T) {
	b := New()
	p, err := b.DeclareVar(loc(), "p", ctype.NewPointer(ctype.IntType), false, false)
	require.Nil(t, err)
	_ = p
	pv, e1 := b.VariableAccess(loc(), "p")
	require.Nil(t, e1)
	one := b.Number(loc(), 1, 0, false, ctype.IntType)

	// ptr + int: left stays pointer
	sum, e2 := b.Binary(loc(), ast.OpAdd, pv, one)
	require.Nil(t, e2)
	bin := sum.(*ast.BinaryExpr)
	require.True(t, bin.Left.GetType().IsPointer())

	// int + ptr: Sema swaps so pointer ends up left
	pv2, _ := b.VariableAccess(loc(), "p")
	sum2, e3 := b.Binary(loc(), ast.OpAdd, one, pv2)
	require.Nil(t, e3)
	bin2 := sum2.(*ast.BinaryExpr)
	require.True(t, bin2.Left.GetType().IsPointer())
}

func TestAssignRequiresLValue(t *testing.T) {
	b := New()
	one := b.Number(loc(), 1, 0, false, ctype.IntType)
	two := b.Number(loc(), 2, 0, false, ctype.IntType)
	_, err := b.Binary(loc(), ast.OpAssign, one, two)
	require.NotNil(t, err)
	require.Equal(t, "lvalue", err.Kind.String())
}

func TestRedefinitionRejected(t *testing.T) {
	b := New()
	_, err := b.DeclareVar(loc(), "x", ctype.IntType, false, false)
	require.Nil(t, err)
	_, err = b.DeclareVar(loc(), "x", ctype.IntType, false, false)
	require.NotNil(t, err)
}

func TestFunctionRedeclareThenDefineOnce(t *testing.T) {
	b := New()
	ft := ctype.NewFunction(ctype.IntType, nil, false)
	_, err := b.DeclareFunc(loc(), "f", ft, false)
	require.Nil(t, err)

	ft2 := ctype.NewFunction(ctype.IntType, nil, false)
	_, err = b.DeclareFunc(loc(), "f", ft2, true)
	require.Nil(t, err)

	ft3 := ctype.NewFunction(ctype.IntType, nil, false)
	_, err = b.DeclareFunc(loc(), "f", ft3, true)
	require.NotNil(t, err)
}

func TestBreakOutsideLoopRejected(t *testing.T) {
	b := New()
	_, err := b.Break(loc())
	require.NotNil(t, err)
	require.Equal(t, "control-flow", err.Kind.String())
}

func TestBreakContinueResolveToEnclosingLoop(t *testing.T) {
	b := New()
	forStmt := &ast.ForStmt{}
	b.PushTarget(forStmt)
	brk, err := b.Break(loc())
	require.Nil(t, err)
	require.Same(t, ast.LoopTarget(forStmt), brk.(*ast.BreakStmt).Target)

	cnt, err := b.Continue(loc())
	require.Nil(t, err)
	require.Same(t, ast.LoopTarget(forStmt), cnt.(*ast.ContinueStmt).Target)
	b.PopTarget()
}

func TestSwitchDuplicateDefaultRejected(t *testing.T) {
	b := New()
	x := b.Number(loc(), 1, 0, false, ctype.IntType)
	sw, err := b.Switch(loc(), x)
	require.Nil(t, err)
	b.PushTarget(sw)
	_, err = b.AttachDefault(loc(), nil)
	require.Nil(t, err)
	_, err = b.AttachDefault(loc(), nil)
	require.NotNil(t, err)
	b.PopTarget()
}

func TestFlattenArrayInit(t *testing.T) {
	b := New()
	arr := ctype.NewArray(ctype.IntType, 3)
	e1 := b.Number(loc(), 1, 0, false, ctype.IntType)
	e2 := b.Number(loc(), 101, 0, false, ctype.IntType)
	raw := ast.RawInit{List: []ast.RawInit{{Scalar: e1}, {Scalar: e2}}}
	entries, err := b.FlattenInit(loc(), arr, raw)
	require.Nil(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, []int{0}, entries[0].Path)
	require.Equal(t, []int{1}, entries[1].Path)
}

func TestFlattenInferredArrayLength(t *testing.T) {
	b := New()
	arr := ctype.NewArray(ctype.IntType, -1)
	e1 := b.Number(loc(), 1, 0, false, ctype.IntType)
	e2 := b.Number(loc(), 2, 0, false, ctype.IntType)
	e3 := b.Number(loc(), 3, 0, false, ctype.IntType)
	raw := ast.RawInit{List: []ast.RawInit{{Scalar: e1}, {Scalar: e2}, {Scalar: e3}}}
	_, err := b.FlattenInit(loc(), arr, raw)
	require.Nil(t, err)
	require.Equal(t, 3, arr.ArrayLen)
}

func TestFlattenCharArrayFromString(t *testing.T) {
	b := New()
	arr := ctype.NewArray(ctype.CharType, -1)
	s := b.String(loc(), "hi")
	raw := ast.RawInit{Scalar: s}
	entries, err := b.FlattenInit(loc(), arr, raw)
	require.Nil(t, err)
	require.Equal(t, 3, arr.ArrayLen) // "hi" + NUL
	require.Len(t, entries, 3)
}

func TestFlattenStructInit(t *testing.T) {
	b := New()
	st := ctype.NewRecord("", ctype.Struct)
	st.AddMember("a", ctype.IntType)
	st.AddMember("b", ctype.IntType)
	e1 := b.Number(loc(), 1, 0, false, ctype.IntType)
	e2 := b.Number(loc(), 2, 0, false, ctype.IntType)
	raw := ast.RawInit{List: []ast.RawInit{{Scalar: e1}, {Scalar: e2}}}
	entries, err := b.FlattenInit(loc(), st, raw)
	require.Nil(t, err)
	require.Len(t, entries, 2)
}

func TestSkipModeSilencesRedefinition(t *testing.T) {
	b := New()
	_, err := b.DeclareVar(loc(), "x", ctype.IntType, false, false)
	require.Nil(t, err)
	b.SetMode(ModeSkip)
	_, err = b.DeclareVar(loc(), "x", ctype.IntType, false, false)
	require.Nil(t, err)
	b.SetMode(ModeNormal)
}

func TestTagForwardDeclarationThenCompletion(t *testing.T) {
	b := New()
	t1 := b.TagAccess(loc(), "S", ctype.Struct)
	require.Empty(t, t1.Members)

	t2, err := b.TagDecl(loc(), "S", ctype.Struct, []ctype.Member{{Name: "x", Type: ctype.IntType}})
	require.Nil(t, err)
	require.Len(t, t2.Members, 1)

	_, err = b.TagDecl(loc(), "S", ctype.Struct, []ctype.Member{{Name: "y", Type: ctype.IntType}})
	require.NotNil(t, err)
}
