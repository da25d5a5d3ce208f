package sema

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/cfront/cfront/diag"
	"github.com/cfront/cfront/scope"
)

// VariableAccess resolves an identifier against the ordinary namespace and
// builds a variable-access node. Functions are not lvalues; everything
// else (globals, locals, parameters, enum constants) is.
func (b *Builder) VariableAccess(loc ast.Loc, name string) (ast.Expr, *diag.Error) {
	sym, ok := b.Scope.FindOrdinary(name)
	if !ok {
		if b.mode == ModeSkip {
			e := &ast.VariableExpr{Name: name}
			e.Loc = loc
			e.SetType(ctype.IntType)
			e.SetLValue(true)
			return e, nil
		}
		return nil, b.err(loc, diag.NameResolution, "undefined identifier '%s'", name)
	}
	e := &ast.VariableExpr{Name: name, Sym: sym}
	e.Loc = loc
	e.SetType(sym.Type)
	e.SetLValue(sym.Kind != scope.KindFunc)
	return e, nil
}

// Number builds a numeric literal node; isFloat distinguishes integer from
// floating constants (the lexer has already decided the literal's type).
func (b *Builder) Number(loc ast.Loc, ival int64, dval float64, isFloat bool, ty *ctype.Type) ast.Expr {
	e := &ast.NumberExpr{IVal: ival, DVal: dval, IsFloat: isFloat}
	e.Loc = loc
	e.SetType(ty)
	return e
}

// String builds a string-literal node, typed char[len+1] per the implicit
// trailing NUL.
func (b *Builder) String(loc ast.Loc, val string) ast.Expr {
	e := &ast.StringExpr{Value: val}
	e.Loc = loc
	e.SetType(ctype.NewArray(ctype.CharType, len(val)+1))
	return e
}

// Binary validates operand types per the operator rule table and builds
// the result node; for a+b with int+ptr it swaps operands so the pointer
// ends up on the left, matching the spec's required Sema rewrite.
func (b *Builder) Binary(loc ast.Loc, op ast.BinaryOp, left, right ast.Expr) (ast.Expr, *diag.Error) {
	if op.IsCompoundAssign() {
		return b.compoundAssign(loc, op, left, right)
	}
	if op == ast.OpAssign {
		return b.assign(loc, left, right)
	}

	lt, rt := left.GetType(), right.GetType()

	switch op {
	case ast.OpAdd:
		return b.buildAdd(loc, left, right, lt, rt)
	case ast.OpSub:
		return b.buildSub(loc, left, right, lt, rt)
	case ast.OpMul, ast.OpDiv:
		if !lt.IsArith() || !rt.IsArith() {
			return nil, b.err(loc, diag.Type, "operands of '%s' must be arithmetic", opName(op))
		}
		return b.mkBinary(loc, op, left, right, ctype.UsualArithConvert(lt, rt)), nil
	case ast.OpMod, ast.OpBitOr, ast.OpBitAnd, ast.OpBitXor, ast.OpShl, ast.OpShr:
		if !lt.IsInteger() || !rt.IsInteger() {
			return nil, b.err(loc, diag.Type, "operands of '%s' must be integer", opName(op))
		}
		return b.mkBinary(loc, op, left, right, ctype.UsualArithConvert(lt, rt)), nil
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !(lt.IsArith() && rt.IsArith()) && !(lt.IsPointer() || rt.IsPointer()) {
			return nil, b.err(loc, diag.Type, "operands of '%s' must be arithmetic or pointer", opName(op))
		}
		return b.mkBinary(loc, op, left, right, ctype.IntType), nil
	case ast.OpLAnd, ast.OpLOr:
		if !lt.IsScalar() || !rt.IsScalar() {
			return nil, b.err(loc, diag.Type, "operands of '%s' must be scalar", opName(op))
		}
		return b.mkBinary(loc, op, left, right, ctype.IntType), nil
	case ast.OpComma:
		return b.mkBinary(loc, op, left, right, rt), nil
	}
	return nil, b.err(loc, diag.Type, "unsupported operator")
}

func (b *Builder) mkBinary(loc ast.Loc, op ast.BinaryOp, left, right ast.Expr, resultType *ctype.Type) ast.Expr {
	e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
	e.Loc = loc
	e.SetType(resultType)
	return e
}

// buildAdd implements a+b: arith+arith uses usual conversion; ptr+int and
// int+ptr both produce a pointer, with Sema swapping operands so the
// pointer is always left, per the operator rule table.
func (b *Builder) buildAdd(loc ast.Loc, left, right ast.Expr, lt, rt *ctype.Type) (ast.Expr, *diag.Error) {
	if lt.IsArith() && rt.IsArith() {
		return b.mkBinary(loc, ast.OpAdd, left, right, ctype.UsualArithConvert(lt, rt)), nil
	}
	if lt.IsPointer() && rt.IsInteger() {
		return b.mkBinary(loc, ast.OpAdd, left, right, lt), nil
	}
	if lt.IsInteger() && rt.IsPointer() {
		// swap so the pointer is left, matching the spec's Sema rewrite
		return b.mkBinary(loc, ast.OpAdd, right, left, rt), nil
	}
	return nil, b.err(loc, diag.Type, "invalid operands to binary +")
}

// buildSub implements a-b: arith-arith uses usual conversion; ptr-int
// yields a pointer; ptr-ptr yields a long (element count difference).
func (b *Builder) buildSub(loc ast.Loc, left, right ast.Expr, lt, rt *ctype.Type) (ast.Expr, *diag.Error) {
	if lt.IsArith() && rt.IsArith() {
		return b.mkBinary(loc, ast.OpSub, left, right, ctype.UsualArithConvert(lt, rt)), nil
	}
	if lt.IsPointer() && rt.IsInteger() {
		return b.mkBinary(loc, ast.OpSub, left, right, lt), nil
	}
	if lt.IsPointer() && rt.IsPointer() {
		return b.mkBinary(loc, ast.OpSub, left, right, ctype.LongType), nil
	}
	return nil, b.err(loc, diag.Type, "invalid operands to binary -")
}

// assign validates `lhs = rhs`: lhs must be an lvalue, rhs must be
// assignment-compatible with lhs's type.
func (b *Builder) assign(loc ast.Loc, lhs, rhs ast.Expr) (ast.Expr, *diag.Error) {
	if !lhs.IsLValue() {
		return nil, b.err(loc, diag.Lvalue, "assignment target is not an lvalue")
	}
	lt := lhs.GetType()
	rt := rhs.GetType().DecayToPointer()
	if !ctype.IsCompatibleAssign(lt, rt) {
		return nil, b.err(loc, diag.Type, "incompatible types in assignment (%s = %s)", lt, rt)
	}
	e := b.mkBinary(loc, ast.OpAssign, lhs, rhs, lt)
	return e, nil
}

// compoundAssign handles +=, -=, etc.: lhs must be an lvalue of arithmetic
// or pointer type (ptr += int uses pointer arithmetic); rhs arithmetic.
func (b *Builder) compoundAssign(loc ast.Loc, op ast.BinaryOp, lhs, rhs ast.Expr) (ast.Expr, *diag.Error) {
	if !lhs.IsLValue() {
		return nil, b.err(loc, diag.Lvalue, "compound assignment target is not an lvalue")
	}
	lt := lhs.GetType()
	rt := rhs.GetType()
	if lt.IsPointer() {
		if op != ast.OpAddAssign && op != ast.OpSubAssign {
			return nil, b.err(loc, diag.Type, "invalid compound assignment on pointer")
		}
		if !rt.IsInteger() {
			return nil, b.err(loc, diag.Type, "pointer compound assignment requires integer operand")
		}
	} else if !lt.IsArith() || !rt.IsArith() {
		return nil, b.err(loc, diag.Type, "operands of compound assignment must be arithmetic")
	}
	return b.mkBinary(loc, op, lhs, rhs, lt), nil
}

// Unary validates +,-,!,~,&,*,++,--(pre) and builds the result node.
func (b *Builder) Unary(loc ast.Loc, op ast.UnaryOp, operand ast.Expr) (ast.Expr, *diag.Error) {
	t := operand.GetType()
	switch op {
	case ast.OpPos, ast.OpNeg:
		if !t.IsArith() {
			return nil, b.err(loc, diag.Type, "operand of unary %s must be arithmetic", unaryName(op))
		}
		return b.mkUnary(loc, op, operand, t), nil
	case ast.OpLNot:
		if !t.IsScalar() {
			return nil, b.err(loc, diag.Type, "operand of '!' must be scalar")
		}
		return b.mkUnary(loc, op, operand, ctype.IntType), nil
	case ast.OpBitNot:
		if !t.IsInteger() {
			return nil, b.err(loc, diag.Type, "operand of '~' must be integer")
		}
		return b.mkUnary(loc, op, operand, t), nil
	case ast.OpAddr:
		if !operand.IsLValue() {
			return nil, b.err(loc, diag.Lvalue, "operand of '&' must be an lvalue")
		}
		e := b.mkUnary(loc, op, operand, ctype.NewPointer(t))
		e.SetLValue(false)
		return e, nil
	case ast.OpDeref:
		dt := t.DecayToPointer()
		if !dt.IsPointer() {
			return nil, b.err(loc, diag.Type, "operand of unary '*' must be a pointer")
		}
		e := b.mkUnary(loc, op, operand, dt.Elem)
		e.SetLValue(true)
		return e, nil
	case ast.OpPreInc, ast.OpPreDec:
		if !operand.IsLValue() {
			return nil, b.err(loc, diag.Lvalue, "operand of ++/-- must be an lvalue")
		}
		if !t.IsArith() && !t.IsPointer() {
			return nil, b.err(loc, diag.Type, "operand of ++/-- must be arithmetic or pointer")
		}
		e := b.mkUnary(loc, op, operand, t)
		e.SetLValue(true)
		return e, nil
	}
	return nil, b.err(loc, diag.Type, "unsupported unary operator")
}

func (b *Builder) mkUnary(loc ast.Loc, op ast.UnaryOp, operand ast.Expr, resultType *ctype.Type) *ast.UnaryExpr {
	e := &ast.UnaryExpr{Op: op, Operand: operand}
	e.Loc = loc
	e.SetType(resultType)
	return e
}

// PostInc / PostDec require an lvalue arith-or-pointer operand; result is
// an rvalue of the operand's type (IR lowering returns the old value).
func (b *Builder) PostInc(loc ast.Loc, operand ast.Expr) (ast.Expr, *diag.Error) {
	return b.postIncDec(loc, operand, false)
}

func (b *Builder) PostDec(loc ast.Loc, operand ast.Expr) (ast.Expr, *diag.Error) {
	return b.postIncDec(loc, operand, true)
}

func (b *Builder) postIncDec(loc ast.Loc, operand ast.Expr, dec bool) (ast.Expr, *diag.Error) {
	if !operand.IsLValue() {
		return nil, b.err(loc, diag.Lvalue, "operand of ++/-- must be an lvalue")
	}
	t := operand.GetType()
	if !t.IsArith() && !t.IsPointer() {
		return nil, b.err(loc, diag.Type, "operand of ++/-- must be arithmetic or pointer")
	}
	if dec {
		e := &ast.PostDecExpr{Operand: operand}
		e.Loc = loc
		e.SetType(t)
		return e, nil
	}
	e := &ast.PostIncExpr{Operand: operand}
	e.Loc = loc
	e.SetType(t)
	return e, nil
}

// Ternary validates `cond ? then : els`: cond must be scalar. Two
// arithmetic branches give their usual-arithmetic-conversion type;
// otherwise then/els must have equal types or both be pointers, and the
// result type is then's type.
func (b *Builder) Ternary(loc ast.Loc, cond, then, els ast.Expr) (ast.Expr, *diag.Error) {
	if !cond.GetType().IsScalar() {
		return nil, b.err(loc, diag.Type, "ternary condition must be scalar")
	}
	tt, et := then.GetType(), els.GetType()
	if tt.IsArith() && et.IsArith() {
		tt = ctype.UsualArithConvert(tt, et)
	} else if !tt.Equal(et) && !(tt.IsPointer() && et.IsPointer()) {
		return nil, b.err(loc, diag.Type, "ternary branches have incompatible types")
	}
	e := &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
	e.Loc = loc
	e.SetType(tt)
	return e, nil
}

// Sizeof builds a sizeof node over either an expression or a bare type;
// result type is always int, and the value (computed later by constfold
// or the IR emitter, not here) is always a byte count, never size/8.
func (b *Builder) Sizeof(loc ast.Loc, operand ast.Expr, explicitType *ctype.Type) ast.Expr {
	e := &ast.SizeofExpr{Operand: operand, TypeArg: explicitType}
	e.Loc = loc
	e.SetType(ctype.IntType)
	return e
}

// Cast builds an explicit cast node; any arithmetic-to-arithmetic or
// pointer-involving cast is accepted (C allows casting between unrelated
// pointer types explicitly).
func (b *Builder) Cast(loc ast.Loc, target *ctype.Type, operand ast.Expr) (ast.Expr, *diag.Error) {
	ot := operand.GetType()
	if !(target.IsArith() || target.IsPointer()) || !(ot.IsArith() || ot.IsPointer()) {
		return nil, b.err(loc, diag.Type, "invalid cast from %s to %s", ot, target)
	}
	e := &ast.CastExpr{Operand: operand}
	e.Loc = loc
	e.SetType(target)
	return e, nil
}

// Subscript validates e[i]: base must (after decay) be a pointer or
// array; result is an lvalue of the element type.
func (b *Builder) Subscript(loc ast.Loc, base, index ast.Expr) (ast.Expr, *diag.Error) {
	bt := base.GetType().DecayToPointer()
	if !bt.IsPointer() {
		return nil, b.err(loc, diag.Type, "subscripted value is not an array or pointer")
	}
	if !index.GetType().IsInteger() {
		return nil, b.err(loc, diag.Type, "array subscript is not an integer")
	}
	e := &ast.SubscriptExpr{Base: base, Index: index}
	e.Loc = loc
	e.SetType(bt.Elem)
	e.SetLValue(true)
	return e, nil
}

// Member validates e.m / e->m: for '.', base must be a record; for '->',
// base must (after decay) be a pointer to a record.
func (b *Builder) Member(loc ast.Loc, base ast.Expr, name string, arrow bool) (ast.Expr, *diag.Error) {
	bt := base.GetType()
	var rec *ctype.Type
	if arrow {
		bt = bt.DecayToPointer()
		if !bt.IsPointer() || !bt.Elem.IsRecord() {
			return nil, b.err(loc, diag.Type, "'->' requires a pointer to struct/union")
		}
		rec = bt.Elem
	} else {
		if !bt.IsRecord() {
			return nil, b.err(loc, diag.Type, "'.' requires a struct/union")
		}
		rec = bt
	}
	for _, m := range rec.Members {
		if m.Name == name {
			e := &ast.MemberExpr{Base: base, Member: m, Arrow: arrow}
			e.Loc = loc
			e.SetType(m.Type)
			e.SetLValue(true)
			return e, nil
		}
	}
	return nil, b.err(loc, diag.NameResolution, "%s has no member named '%s'", rec, name)
}

// Call validates f(args): callee must be function-typed or
// pointer-to-function; arg count must match unless variadic.
func (b *Builder) Call(loc ast.Loc, callee ast.Expr, args []ast.Expr) (ast.Expr, *diag.Error) {
	ft := callee.GetType()
	if ft.IsPointer() {
		ft = ft.Elem
	}
	if !ft.IsFunction() {
		return nil, b.err(loc, diag.Type, "called object is not a function or function pointer")
	}
	if len(args) < len(ft.Params) || (!ft.Variadic && len(args) != len(ft.Params)) {
		return nil, b.err(loc, diag.NameResolution, "function call argument count mismatch: want %d, got %d", len(ft.Params), len(args))
	}
	for i, p := range ft.Params {
		at := args[i].GetType().DecayToPointer()
		if !ctype.IsCompatibleAssign(p.Type, at) {
			return nil, b.err(loc, diag.Type, "argument %d type mismatch: want %s, got %s", i+1, p.Type, at)
		}
	}
	e := &ast.CallExpr{Callee: callee, Args: args}
	e.Loc = loc
	e.SetType(ft.Return)
	return e, nil
}

func opName(op ast.BinaryOp) string {
	names := map[ast.BinaryOp]string{
		ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpMod: "%",
		ast.OpEq: "==", ast.OpNe: "!=", ast.OpLt: "<", ast.OpLe: "<=", ast.OpGt: ">", ast.OpGe: ">=",
		ast.OpLAnd: "&&", ast.OpLOr: "||", ast.OpBitOr: "|", ast.OpBitAnd: "&", ast.OpBitXor: "^",
		ast.OpShl: "<<", ast.OpShr: ">>", ast.OpComma: ",",
	}
	return names[op]
}

func unaryName(op ast.UnaryOp) string {
	names := map[ast.UnaryOp]string{
		ast.OpPos: "+", ast.OpNeg: "-", ast.OpLNot: "!", ast.OpBitNot: "~",
		ast.OpAddr: "&", ast.OpDeref: "*", ast.OpPreInc: "++", ast.OpPreDec: "--",
	}
	return names[op]
}
