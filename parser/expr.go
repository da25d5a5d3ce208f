package parser

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/cfront/cfront/diag"
	"github.com/cfront/cfront/lexer"
)

// parseExpr is the comma-operator entry point used wherever a full
// expression (not just an assignment-expression) is legal: statement
// expressions and the three clauses of a for-loop header.
func (p *Parser) parseExpr() (ast.Expr, *diag.Error) {
	loc := p.loc()
	e, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct(",") {
		p.advance()
		rhs, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		e, err = p.sema.Binary(loc, ast.OpComma, e, rhs)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

var assignOps = map[string]ast.BinaryOp{
	"=":   ast.OpAssign,
	"+=":  ast.OpAddAssign,
	"-=":  ast.OpSubAssign,
	"*=":  ast.OpMulAssign,
	"/=":  ast.OpDivAssign,
	"%=":  ast.OpModAssign,
	"|=":  ast.OpOrAssign,
	"^=":  ast.OpXorAssign,
	"&=":  ast.OpAndAssign,
	"<<=": ast.OpShlAssign,
	">>=": ast.OpShrAssign,
}

// parseAssignment parses a right-associative assignment-expression; C's
// grammar requires the left side to be a unary-expression, but since Sema
// validates lvalue-ness after the fact, parsing the full conditional level
// and checking at assign time is equivalent and simpler.
func (p *Parser) parseAssignment() (ast.Expr, *diag.Error) {
	loc := p.loc()
	lhs, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == lexer.Punct {
		if op, ok := assignOps[p.cur.Text]; ok {
			p.advance()
			rhs, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			return p.sema.Binary(loc, op, lhs, rhs)
		}
	}
	return lhs, nil
}

func (p *Parser) parseConditional() (ast.Expr, *diag.Error) {
	loc := p.loc()
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.curIsPunct("?") {
		return cond, nil
	}
	p.advance()
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	els, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return p.sema.Ternary(loc, cond, then, els)
}

func (p *Parser) parseLogicalOr() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("||") {
		p.advance()
		r, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, ast.OpLOr, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("&&") {
		p.advance()
		r, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, ast.OpLAnd, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseBitOr() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("|") {
		p.advance()
		r, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, ast.OpBitOr, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseBitXor() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("^") {
		p.advance()
		r, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, ast.OpBitXor, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseBitAnd() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("&") {
		p.advance()
		r, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, ast.OpBitAnd, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseEquality() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("==") || p.curIsPunct("!=") {
		op := ast.OpEq
		if p.cur.Text == "!=" {
			op = ast.OpNe
		}
		p.advance()
		r, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, op, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseRelational() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.curIsPunct("<"):
			op = ast.OpLt
		case p.curIsPunct("<="):
			op = ast.OpLe
		case p.curIsPunct(">"):
			op = ast.OpGt
		case p.curIsPunct(">="):
			op = ast.OpGe
		default:
			return l, nil
		}
		p.advance()
		r, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, op, l, r)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseShift() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("<<") || p.curIsPunct(">>") {
		op := ast.OpShl
		if p.cur.Text == ">>" {
			op = ast.OpShr
		}
		p.advance()
		r, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, op, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseAdditive() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("+") || p.curIsPunct("-") {
		op := ast.OpAdd
		if p.cur.Text == "-" {
			op = ast.OpSub
		}
		p.advance()
		r, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, op, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, *diag.Error) {
	loc := p.loc()
	l, err := p.parseCast()
	if err != nil {
		return nil, err
	}
	for p.curIsPunct("*") || p.curIsPunct("/") || p.curIsPunct("%") {
		var op ast.BinaryOp
		switch p.cur.Text {
		case "*":
			op = ast.OpMul
		case "/":
			op = ast.OpDiv
		case "%":
			op = ast.OpMod
		}
		p.advance()
		r, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		l, err = p.sema.Binary(loc, op, l, r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

// isTypeNameStart reports whether the current token can begin a
// type-name (used to disambiguate a parenthesized cast from a
// parenthesized sub-expression).
func (p *Parser) isTypeNameStart() bool {
	switch {
	case p.curIsKeyword("void"), p.curIsKeyword("char"), p.curIsKeyword("short"),
		p.curIsKeyword("int"), p.curIsKeyword("long"), p.curIsKeyword("float"),
		p.curIsKeyword("double"), p.curIsKeyword("signed"), p.curIsKeyword("unsigned"),
		p.curIsKeyword("struct"), p.curIsKeyword("union"),
		p.curIsKeyword("const"), p.curIsKeyword("volatile"):
		return true
	case p.cur.Kind == lexer.Ident:
		return p.sema.IsTypedefName(p.cur.Text)
	}
	return false
}

// parseAbstractType parses the pointer/array/function suffix part of a
// type-name by reusing parseDeclarator; an identifier, if one is present,
// is consumed and discarded.
func (p *Parser) parseAbstractType(base *ctype.Type) (*ctype.Type, *diag.Error) {
	_, ty, err := p.parseDeclarator(base)
	return ty, err
}

func (p *Parser) parseCast() (ast.Expr, *diag.Error) {
	if p.curIsPunct("(") {
		p.checkpoint()
		loc := p.loc()
		p.advance()
		if p.isTypeNameStart() {
			base, err := p.parseSpecifierQualifierList()
			if err == nil {
				ty, terr := p.parseAbstractType(base)
				if terr == nil && p.curIsPunct(")") {
					p.advance()
					p.discardCheckpoint()
					operand, oerr := p.parseCast()
					if oerr != nil {
						return nil, oerr
					}
					return p.sema.Cast(loc, ty, operand)
				}
			}
		}
		p.restore()
	}
	return p.parseUnary()
}

func (p *Parser) parseUnary() (ast.Expr, *diag.Error) {
	loc := p.loc()
	switch {
	case p.curIsPunct("++"):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpPreInc, operand)
	case p.curIsPunct("--"):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpPreDec, operand)
	case p.curIsPunct("+"):
		p.advance()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpPos, operand)
	case p.curIsPunct("-"):
		p.advance()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpNeg, operand)
	case p.curIsPunct("!"):
		p.advance()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpLNot, operand)
	case p.curIsPunct("~"):
		p.advance()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpBitNot, operand)
	case p.curIsPunct("&"):
		p.advance()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpAddr, operand)
	case p.curIsPunct("*"):
		p.advance()
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.sema.Unary(loc, ast.OpDeref, operand)
	case p.curIsKeyword("sizeof"):
		return p.parseSizeof()
	}
	return p.parsePostfix()
}

func (p *Parser) parseSizeof() (ast.Expr, *diag.Error) {
	loc := p.loc()
	p.advance()
	if p.curIsPunct("(") {
		p.checkpoint()
		p.advance()
		if p.isTypeNameStart() {
			base, err := p.parseSpecifierQualifierList()
			if err == nil {
				ty, terr := p.parseAbstractType(base)
				if terr == nil && p.curIsPunct(")") {
					p.advance()
					p.discardCheckpoint()
					return p.sema.Sizeof(loc, nil, ty), nil
				}
			}
		}
		p.restore()
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.sema.Sizeof(loc, operand, nil), nil
}

func (p *Parser) parsePostfix() (ast.Expr, *diag.Error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		loc := p.loc()
		switch {
		case p.curIsPunct("["):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			e, err = p.sema.Subscript(loc, e, idx)
			if err != nil {
				return nil, err
			}
		case p.curIsPunct("("):
			p.advance()
			var args []ast.Expr
			if !p.curIsPunct(")") {
				for {
					a, err := p.parseAssignment()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if !p.curIsPunct(",") {
						break
					}
					p.advance()
				}
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			e, err = p.sema.Call(loc, e, args)
			if err != nil {
				return nil, err
			}
		case p.curIsPunct("."):
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			e, err = p.sema.Member(loc, e, name, false)
			if err != nil {
				return nil, err
			}
		case p.curIsPunct("->"):
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			e, err = p.sema.Member(loc, e, name, true)
			if err != nil {
				return nil, err
			}
		case p.curIsPunct("++"):
			p.advance()
			e, err = p.sema.PostInc(loc, e)
			if err != nil {
				return nil, err
			}
		case p.curIsPunct("--"):
			p.advance()
			e, err = p.sema.PostDec(loc, e)
			if err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, *diag.Error) {
	loc := p.loc()
	switch {
	case p.cur.Kind == lexer.Ident:
		name := p.cur.Text
		p.advance()
		return p.sema.VariableAccess(loc, name)
	case p.cur.Kind == lexer.IntLit:
		v := p.cur.IVal
		ty := p.cur.NumType
		p.advance()
		return p.sema.Number(loc, v, 0, false, ty), nil
	case p.cur.Kind == lexer.CharLit:
		v := p.cur.IVal
		p.advance()
		return p.sema.Number(loc, v, 0, false, ctype.IntType), nil
	case p.cur.Kind == lexer.FloatLit:
		v := p.cur.DVal
		ty := p.cur.NumType
		p.advance()
		return p.sema.Number(loc, 0, v, true, ty), nil
	case p.cur.Kind == lexer.StringLit:
		v := p.cur.SVal
		p.advance()
		return p.sema.String(loc, v), nil
	case p.curIsPunct("("):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return e, p.expectPunct(")")
	}
	return nil, p.errf(loc, diag.Syntactic, "expected expression, found '%s'", p.cur.Text)
}
