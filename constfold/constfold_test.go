package constfold

import (
	"testing"

	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/stretchr/testify/require"
)

func num(i int64) ast.Expr {
	n := &ast.NumberExpr{IVal: i}
	n.SetType(ctype.IntType)
	return n
}

func TestEvalArithmetic(t *testing.T) {
	e := &ast.BinaryExpr{Op: ast.OpAdd, Left: num(3), Right: num(4)}
	e.SetType(ctype.IntType)
	v, err := Eval(e)
	require.NoError(t, err)
	require.Equal(t, int64(7), v.AsInt())
}

func TestSizeofReturnsBytesNotBits(t *testing.T) {
	s := &ast.SizeofExpr{TypeArg: ctype.IntType}
	s.SetType(ctype.IntType)
	v, err := Eval(s)
	require.NoError(t, err)
	require.Equal(t, int64(4), v.AsInt()) // 4 bytes, not 32 or 4/8
}

func TestNonConstantRejected(t *testing.T) {
	v := &ast.VariableExpr{Name: "x"}
	v.SetType(ctype.IntType)
	_, err := Eval(v)
	require.Error(t, err)
	var nc *ErrNotConstant
	require.ErrorAs(t, err, &nc)
}

func TestBitwiseOnFloatRejected(t *testing.T) {
	d := &ast.NumberExpr{DVal: 1.5, IsFloat: true}
	d.SetType(ctype.DoubleType)
	e := &ast.BinaryExpr{Op: ast.OpBitAnd, Left: d, Right: num(1)}
	e.SetType(ctype.IntType)
	_, err := Eval(e)
	require.Error(t, err)
}

func TestTernaryConstant(t *testing.T) {
	cond := num(1)
	e := &ast.TernaryExpr{Cond: cond, Then: num(10), Else: num(20)}
	e.SetType(ctype.IntType)
	v, err := Eval(e)
	require.NoError(t, err)
	require.Equal(t, int64(10), v.AsInt())
}

func TestCastNarrowingSignPreserved(t *testing.T) {
	// (char)-1 should remain -1 (sign-extended), not 255
	inner := num(-1)
	c := &ast.CastExpr{Operand: inner}
	c.SetType(ctype.CharType)
	v, err := Eval(c)
	require.NoError(t, err)
	require.Equal(t, int64(-1), v.AsInt())
}
