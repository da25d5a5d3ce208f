package parser

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/cfront/cfront/diag"
	"github.com/cfront/cfront/lexer"
	"github.com/cfront/cfront/sema"
)

// declSpecState is the declaration-specifier state machine: it counts each
// type keyword seen so combinations like "unsigned long long int" resolve
// to one primitive, tracks at most one storage class, and rejects
// combining typedef with any other storage class (the catch-all the
// expanded spec calls for).
type declSpecState struct {
	voidC, charC, shortC, intC, longC, floatC, doubleC, signedC, unsignedC int

	storageClass string // "", "typedef", "extern", "static", "auto", "register"
	tagType      *ctype.Type
	typedefType  *ctype.Type
}

func (p *Parser) parseDeclSpecifiers() (*ctype.Type, bool, bool, bool, *diag.Error) {
	var st declSpecState
	sawAny := false
	for {
		loc := p.loc()
		switch {
		case p.curIsKeyword("typedef"), p.curIsKeyword("extern"), p.curIsKeyword("static"),
			p.curIsKeyword("auto"), p.curIsKeyword("register"):
			if st.storageClass != "" {
				return nil, false, false, false, p.errf(loc, diag.Syntactic, "cannot combine storage class '%s' with '%s'", st.storageClass, p.cur.Text)
			}
			st.storageClass = p.cur.Text
			p.advance()
			sawAny = true
		case p.curIsKeyword("const"), p.curIsKeyword("volatile"), p.curIsKeyword("inline"):
			// qualifiers are accepted and discarded; this front end does not
			// model const-correctness or inlining hints.
			p.advance()
			sawAny = true
		case p.curIsKeyword("void"):
			st.voidC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("char"):
			st.charC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("short"):
			st.shortC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("int"):
			st.intC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("long"):
			st.longC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("float"):
			st.floatC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("double"):
			st.doubleC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("signed"):
			st.signedC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("unsigned"):
			st.unsignedC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("struct"), p.curIsKeyword("union"):
			t, err := p.parseStructOrUnionSpecifier()
			if err != nil {
				return nil, false, false, false, err
			}
			st.tagType = t
			sawAny = true
		case p.cur.Kind == lexer.Ident && st.tagType == nil && st.typedefType == nil && !hasPrimitiveKeyword(st):
			if t, ok := p.sema.ResolveTypedef(p.cur.Text); ok {
				st.typedefType = t
				p.advance()
				sawAny = true
			} else {
				goto done
			}
		default:
			goto done
		}
	}
done:
	if !sawAny {
		return nil, false, false, false, p.errf(p.loc(), diag.Syntactic, "expected a declaration")
	}
	base, err := resolvePrimitive(st)
	if err != nil {
		return nil, false, false, false, p.errf(p.loc(), diag.Type, "%s", err.Error())
	}
	return base, st.storageClass == "typedef", st.storageClass == "extern", st.storageClass == "static", nil
}

func hasPrimitiveKeyword(st declSpecState) bool {
	return st.voidC+st.charC+st.shortC+st.intC+st.longC+st.floatC+st.doubleC+st.signedC+st.unsignedC > 0
}

type specError string

func (e specError) Error() string { return string(e) }

func resolvePrimitive(st declSpecState) (*ctype.Type, error) {
	if st.tagType != nil {
		return st.tagType, nil
	}
	if st.typedefType != nil {
		return st.typedefType, nil
	}
	switch {
	case st.voidC > 0:
		return ctype.VoidType, nil
	case st.doubleC > 0:
		if st.longC > 0 {
			return ctype.LDoubleType, nil
		}
		return ctype.DoubleType, nil
	case st.floatC > 0:
		return ctype.FloatType, nil
	case st.charC > 0:
		if st.unsignedC > 0 {
			return ctype.UCharType, nil
		}
		return ctype.CharType, nil
	case st.shortC > 0:
		if st.unsignedC > 0 {
			return ctype.UShortType, nil
		}
		return ctype.ShortType, nil
	case st.longC >= 2:
		if st.unsignedC > 0 {
			return ctype.ULLongType, nil
		}
		return ctype.LLongType, nil
	case st.longC == 1:
		if st.unsignedC > 0 {
			return ctype.ULongType, nil
		}
		return ctype.LongType, nil
	case st.unsignedC > 0:
		return ctype.UIntType, nil
	case st.intC > 0, st.signedC > 0:
		return ctype.IntType, nil
	}
	return nil, specError("no type specifier given")
}

func (p *Parser) parseStructOrUnionSpecifier() (*ctype.Type, *diag.Error) {
	tag := ctype.Struct
	if p.curIsKeyword("union") {
		tag = ctype.Union
	}
	p.advance()

	name := ""
	if p.cur.Kind == lexer.Ident {
		name = p.cur.Text
		p.advance()
	}

	if !p.curIsPunct("{") {
		if name == "" {
			return nil, p.errf(p.loc(), diag.Syntactic, "expected tag name or '{' after struct/union")
		}
		return p.sema.TagAccess(p.loc(), name, tag), nil
	}
	p.advance() // '{'

	var members []ctype.Member
	for !p.curIsPunct("}") {
		memTy, err := p.parseSpecifierQualifierList()
		if err != nil {
			return nil, err
		}
		for {
			mname, mty, derr := p.parseDeclarator(memTy)
			if derr != nil {
				return nil, derr
			}
			members = append(members, ctype.Member{Type: mty, Name: mname})
			if !p.curIsPunct(",") {
				break
			}
			p.advance()
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
	}
	p.advance() // '}'

	if name == "" {
		return p.sema.AnonTagDecl(tag, members), nil
	}
	t, err := p.sema.TagDecl(p.loc(), name, tag, members)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// parseSpecifierQualifierList parses the type-only subset of declaration
// specifiers a struct/union member or a cast/sizeof type-name uses (no
// storage class is legal there).
func (p *Parser) parseSpecifierQualifierList() (*ctype.Type, *diag.Error) {
	var st declSpecState
	sawAny := false
	for {
		switch {
		case p.curIsKeyword("const"), p.curIsKeyword("volatile"):
			p.advance()
			sawAny = true
		case p.curIsKeyword("void"):
			st.voidC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("char"):
			st.charC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("short"):
			st.shortC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("int"):
			st.intC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("long"):
			st.longC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("float"):
			st.floatC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("double"):
			st.doubleC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("signed"):
			st.signedC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("unsigned"):
			st.unsignedC++
			p.advance()
			sawAny = true
		case p.curIsKeyword("struct"), p.curIsKeyword("union"):
			t, err := p.parseStructOrUnionSpecifier()
			if err != nil {
				return nil, err
			}
			st.tagType = t
			sawAny = true
		case p.cur.Kind == lexer.Ident && st.tagType == nil && !hasPrimitiveKeyword(st):
			if t, ok := p.sema.ResolveTypedef(p.cur.Text); ok {
				st.typedefType = t
				p.advance()
				sawAny = true
			} else {
				goto done
			}
		default:
			goto done
		}
	}
done:
	if !sawAny {
		return nil, p.errf(p.loc(), diag.Syntactic, "expected a type")
	}
	base, err := resolvePrimitive(st)
	if err != nil {
		return nil, p.errf(p.loc(), diag.Type, "%s", err.Error())
	}
	return base, nil
}

// parseDeclarator implements "pointer* direct-declarator", handling the
// parenthesized-declarator ambiguity with a speculative two-pass parse:
// first a throwaway pass (diagnostics silenced) just to find the matching
// ')' and compute the resolved base type from the real suffix chain after
// it, then a real pass re-parsed from the checkpoint with that resolved
// base.
func (p *Parser) parseDeclarator(base *ctype.Type) (string, *ctype.Type, *diag.Error) {
	ty := base
	for p.curIsPunct("*") {
		p.advance()
		for p.curIsKeyword("const") || p.curIsKeyword("volatile") {
			p.advance()
		}
		ty = ctype.NewPointer(ty)
	}

	if p.curIsPunct("(") {
		p.advance()
		p.checkpoint()

		p.sema.SetMode(sema.ModeSkip)
		_, _, derr := p.parseDeclarator(ctype.IntType)
		p.sema.SetMode(sema.ModeNormal)
		if derr != nil {
			return "", nil, derr
		}
		if err := p.expectPunct(")"); err != nil {
			return "", nil, err
		}
		resolvedBase, err := p.parseDeclaratorSuffixes(ty)
		if err != nil {
			return "", nil, err
		}
		p.restore()
		name, finalTy, err := p.parseDeclarator(resolvedBase)
		if err != nil {
			return "", nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return "", nil, err
		}
		// read the suffix chain again, silenced, to move past it
		p.sema.SetMode(sema.ModeSkip)
		_, err = p.parseDeclaratorSuffixes(ty)
		p.sema.SetMode(sema.ModeNormal)
		if err != nil {
			return "", nil, err
		}
		return name, finalTy, nil
	}

	name := ""
	if p.cur.Kind == lexer.Ident {
		name = p.cur.Text
		p.advance()
	}
	finalTy, err := p.parseDeclaratorSuffixes(ty)
	if err != nil {
		return "", nil, err
	}
	return name, finalTy, nil
}

func (p *Parser) parseDeclaratorSuffixes(base *ctype.Type) (*ctype.Type, *diag.Error) {
	return p.parseSuffixChain(base, true)
}

func (p *Parser) parseSuffixChain(base *ctype.Type, outer bool) (*ctype.Type, *diag.Error) {
	if p.curIsPunct("[") {
		loc := p.loc()
		p.advance()
		n := -1
		if !p.curIsPunct("]") {
			v, err := p.evalConstIntExpr()
			if err != nil {
				return nil, err
			}
			n = int(v)
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		inner, err := p.parseSuffixChain(base, false)
		if err != nil {
			return nil, err
		}
		if n < 0 && !outer {
			return nil, p.errf(loc, diag.Type, "array has incomplete element type (only the outermost array dimension may be unsized)")
		}
		return ctype.NewArray(inner, n), nil
	}
	if p.curIsPunct("(") {
		p.advance()
		params, variadic, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return ctype.NewFunction(base, params, variadic), nil
	}
	return base, nil
}

func (p *Parser) parseParamList() ([]ctype.Param, bool, *diag.Error) {
	if p.curIsKeyword("void") {
		p.checkpoint()
		p.advance()
		if p.curIsPunct(")") {
			p.discardCheckpoint()
			return nil, false, nil
		}
		p.restore()
	}
	if p.curIsPunct(")") {
		return nil, false, nil
	}
	var params []ctype.Param
	for {
		if p.curIsPunct("...") {
			p.advance()
			return params, true, nil
		}
		base, _, _, _, err := p.parseDeclSpecifiers()
		if err != nil {
			return nil, false, err
		}
		name := ""
		ty := base
		if !p.curIsPunct(",") && !p.curIsPunct(")") {
			n, t, derr := p.parseDeclarator(base)
			if derr != nil {
				return nil, false, derr
			}
			name, ty = n, t
		}
		params = append(params, ctype.Param{Type: ty.DecayToPointer(), Name: name})
		if !p.curIsPunct(",") {
			break
		}
		p.advance()
	}
	return params, false, nil
}

// parseInitializer parses either a single assignment-expression or a
// brace-enclosed, possibly nested, list — the parser's syntactic view
// that Sema's FlattenInit later resolves against the declared type.
func (p *Parser) parseInitializer() (ast.RawInit, *diag.Error) {
	if p.curIsPunct("{") {
		p.advance()
		var list []ast.RawInit
		for !p.curIsPunct("}") {
			sub, err := p.parseInitializer()
			if err != nil {
				return ast.RawInit{}, err
			}
			list = append(list, sub)
			if !p.curIsPunct(",") {
				break
			}
			p.advance()
		}
		if err := p.expectPunct("}"); err != nil {
			return ast.RawInit{}, err
		}
		return ast.RawInit{List: list}, nil
	}
	e, err := p.parseAssignment()
	if err != nil {
		return ast.RawInit{}, err
	}
	return ast.RawInit{Scalar: e}, nil
}
