package parser

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/diag"
	"github.com/cfront/cfront/lexer"
)

func (p *Parser) parseBlock() (*ast.BlockStmt, *diag.Error) {
	loc := p.loc()
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	p.sema.EnterScope()
	blk := &ast.BlockStmt{}
	blk.Loc = loc
	for !p.curIsPunct("}") {
		s, err := p.parseBlockItem()
		if err != nil {
			p.sema.ExitScope()
			return nil, err
		}
		if s != nil {
			blk.Stmts = append(blk.Stmts, s)
		}
	}
	p.sema.ExitScope()
	return blk, p.expectPunct("}")
}

// parseBlockItem parses either a local declaration or a statement,
// disambiguated by whether the leading identifier names a type (a
// typedef name) or one of the fixed type keywords — the classic
// typedef-vs-expression ambiguity, resolved by a symbol table lookup
// rather than a speculative re-parse.
func (p *Parser) parseBlockItem() (ast.Stmt, *diag.Error) {
	if p.startsDeclaration() {
		decls, err := p.parseLocalDecl()
		if err != nil {
			return nil, err
		}
		s := &ast.DeclStmt{Decls: decls}
		s.Loc = p.loc()
		return s, nil
	}
	return p.parseStatement()
}

func (p *Parser) startsDeclaration() bool {
	switch {
	case p.curIsKeyword("typedef"), p.curIsKeyword("extern"), p.curIsKeyword("static"),
		p.curIsKeyword("auto"), p.curIsKeyword("register"),
		p.curIsKeyword("const"), p.curIsKeyword("volatile"), p.curIsKeyword("inline"),
		p.curIsKeyword("void"), p.curIsKeyword("char"), p.curIsKeyword("short"),
		p.curIsKeyword("int"), p.curIsKeyword("long"), p.curIsKeyword("float"),
		p.curIsKeyword("double"), p.curIsKeyword("signed"), p.curIsKeyword("unsigned"),
		p.curIsKeyword("struct"), p.curIsKeyword("union"):
		return true
	case p.cur.Kind == lexer.Ident:
		return p.sema.IsTypedefName(p.cur.Text)
	}
	return false
}

func (p *Parser) parseLocalDecl() ([]ast.Decl, *diag.Error) {
	loc := p.loc()
	base, isTypedef, isExtern, isStatic, err := p.parseDeclSpecifiers()
	if err != nil {
		return nil, err
	}
	if p.curIsPunct(";") {
		p.advance()
		return nil, nil
	}
	var decls []ast.Decl
	for {
		name, ty, derr := p.parseDeclarator(base)
		if derr != nil {
			return nil, derr
		}
		if isTypedef {
			if terr := p.sema.DeclareTypedef(loc, name, ty); terr != nil {
				return nil, terr
			}
		} else {
			vd, verr := p.sema.DeclareVar(loc, name, ty, isExtern, isStatic)
			if verr != nil {
				return nil, verr
			}
			if p.curIsPunct("=") {
				p.advance()
				raw, ierr := p.parseInitializer()
				if ierr != nil {
					return nil, ierr
				}
				entries, ferr := p.sema.FlattenInit(loc, ty, raw)
				if ferr != nil {
					return nil, ferr
				}
				p.sema.SetVarInit(vd, entries)
			}
			decls = append(decls, vd)
		}
		if !p.curIsPunct(",") {
			break
		}
		p.advance()
	}
	return decls, p.expectPunct(";")
}

func (p *Parser) parseStatement() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	switch {
	case p.curIsPunct("{"):
		return p.parseBlock()
	case p.curIsPunct(";"):
		p.advance()
		s := &ast.ExprStmt{}
		s.Loc = loc
		return s, nil
	case p.curIsKeyword("if"):
		return p.parseIf()
	case p.curIsKeyword("for"):
		return p.parseFor()
	case p.curIsKeyword("while"):
		return p.parseWhile()
	case p.curIsKeyword("do"):
		return p.parseDoWhile()
	case p.curIsKeyword("switch"):
		return p.parseSwitch()
	case p.curIsKeyword("case"):
		return p.parseCase()
	case p.curIsKeyword("default"):
		return p.parseDefault()
	case p.curIsKeyword("break"):
		p.advance()
		s, err := p.sema.Break(loc)
		if err != nil {
			return nil, err
		}
		return s, p.expectPunct(";")
	case p.curIsKeyword("continue"):
		p.advance()
		s, err := p.sema.Continue(loc)
		if err != nil {
			return nil, err
		}
		return s, p.expectPunct(";")
	case p.curIsKeyword("return"):
		return p.parseReturn()
	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s := &ast.ExprStmt{X: e}
		s.Loc = loc
		return s, p.expectPunct(";")
	}
}

func (p *Parser) parseIf() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.curIsKeyword("else") {
		p.advance()
		els, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return p.sema.If(loc, cond, then, els)
}

func (p *Parser) parseFor() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	p.sema.EnterScope()
	var init ast.Stmt
	if p.startsDeclaration() {
		decls, err := p.parseLocalDecl()
		if err != nil {
			p.sema.ExitScope()
			return nil, err
		}
		ds := &ast.DeclStmt{Decls: decls}
		ds.Loc = loc
		init = ds
	} else if !p.curIsPunct(";") {
		e, err := p.parseExpr()
		if err != nil {
			p.sema.ExitScope()
			return nil, err
		}
		es := &ast.ExprStmt{X: e}
		es.Loc = loc
		init = es
		if err := p.expectPunct(";"); err != nil {
			p.sema.ExitScope()
			return nil, err
		}
	} else {
		p.advance()
	}

	var cond ast.Expr
	if !p.curIsPunct(";") {
		e, err := p.parseExpr()
		if err != nil {
			p.sema.ExitScope()
			return nil, err
		}
		cond = e
	}
	if err := p.expectPunct(";"); err != nil {
		p.sema.ExitScope()
		return nil, err
	}

	var inc ast.Expr
	if !p.curIsPunct(")") {
		e, err := p.parseExpr()
		if err != nil {
			p.sema.ExitScope()
			return nil, err
		}
		inc = e
	}
	if err := p.expectPunct(")"); err != nil {
		p.sema.ExitScope()
		return nil, err
	}

	stub, serr := p.sema.For(loc, init, cond, inc, nil)
	if serr != nil {
		p.sema.ExitScope()
		return nil, serr
	}
	p.sema.PushTarget(stub)
	body, err := p.parseStatement()
	p.sema.PopTarget()
	p.sema.ExitScope()
	if err != nil {
		return nil, err
	}
	stub.Body = body
	return stub, nil
}

func (p *Parser) parseWhile() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	stub, serr := p.sema.While(loc, cond, nil)
	if serr != nil {
		return nil, serr
	}
	p.sema.PushTarget(stub)
	body, err := p.parseStatement()
	p.sema.PopTarget()
	if err != nil {
		return nil, err
	}
	stub.Body = body
	return stub, nil
}

func (p *Parser) parseDoWhile() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	stub := &ast.DoWhileStmt{}
	stub.Loc = loc
	p.sema.PushTarget(stub)
	body, err := p.parseStatement()
	p.sema.PopTarget()
	if err != nil {
		return nil, err
	}
	if err := expectKeyword(p, "while"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	if _, serr := p.sema.DoWhile(loc, body, cond); serr != nil {
		return nil, serr
	}
	// keep the node that break/continue in the body already target
	stub.Body = body
	stub.Cond = cond
	return stub, nil
}

func expectKeyword(p *Parser, kw string) *diag.Error {
	if !p.curIsKeyword(kw) {
		return p.errf(p.loc(), diag.Syntactic, "expected '%s', found '%s'", kw, p.cur.Text)
	}
	p.advance()
	return nil
}

func (p *Parser) parseSwitch() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	stub, serr := p.sema.Switch(loc, x)
	if serr != nil {
		return nil, serr
	}
	p.sema.PushTarget(stub)
	body, berr := p.parseStatement()
	p.sema.PopTarget()
	if berr != nil {
		return nil, berr
	}
	stub.Body = body
	return stub, nil
}

func (p *Parser) parseCase() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	v, err := p.evalConstIntExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return p.sema.AttachCase(loc, v, body)
}

func (p *Parser) parseDefault() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return p.sema.AttachDefault(loc, body)
}

func (p *Parser) parseReturn() (ast.Stmt, *diag.Error) {
	loc := p.loc()
	p.advance()
	var x ast.Expr
	if !p.curIsPunct(";") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		x = e
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return p.sema.Return(loc, p.curFuncReturnType, x)
}
