package sema

import (
	"github.com/cfront/cfront/ast"
	"github.com/cfront/cfront/ctype"
	"github.com/cfront/cfront/diag"
)

// PushTarget records a loop or switch node as the innermost break/continue
// target, mirroring the design note's "stack of loop/switch nodes during
// parsing." Callers must pair every Push with a Pop around the construct.
func (b *Builder) PushTarget(t ast.LoopTarget) {
	b.targets = append(b.targets, t)
	if sw, ok := t.(*ast.SwitchStmt); ok {
		b.switches = append(b.switches, sw)
	}
}

// PopTarget unwinds the innermost loop/switch target.
func (b *Builder) PopTarget() {
	top := b.targets[len(b.targets)-1]
	b.targets = b.targets[:len(b.targets)-1]
	if _, ok := top.(*ast.SwitchStmt); ok {
		b.switches = b.switches[:len(b.switches)-1]
	}
}

// innermostLoop returns the nearest enclosing for/while/do-while, skipping
// switch frames, for `continue` resolution (continue cannot target a
// switch).
func (b *Builder) innermostLoop() (ast.LoopTarget, bool) {
	for i := len(b.targets) - 1; i >= 0; i-- {
		switch b.targets[i].(type) {
		case *ast.ForStmt, *ast.WhileStmt, *ast.DoWhileStmt:
			return b.targets[i], true
		}
	}
	return nil, false
}

// Break validates that a break appears inside a loop or switch and
// resolves its weak target reference to the innermost one.
func (b *Builder) Break(loc ast.Loc) (ast.Stmt, *diag.Error) {
	if len(b.targets) == 0 {
		return nil, b.err(loc, diag.ControlFlow, "'break' outside loop or switch")
	}
	s := &ast.BreakStmt{Target: b.targets[len(b.targets)-1]}
	s.Loc = loc
	return s, nil
}

// Continue validates that a continue appears inside a loop (not a bare
// switch) and resolves its weak target reference.
func (b *Builder) Continue(loc ast.Loc) (ast.Stmt, *diag.Error) {
	t, ok := b.innermostLoop()
	if !ok {
		return nil, b.err(loc, diag.ControlFlow, "'continue' outside loop")
	}
	s := &ast.ContinueStmt{Target: t}
	s.Loc = loc
	return s, nil
}

// If builds an if/then/else node; the condition needs no particular type
// beyond being convertible to bool at emission time (integer vs zero,
// pointer vs null, float vs 0.0), so Sema does not restrict it further
// here beyond requiring it be scalar.
func (b *Builder) If(loc ast.Loc, cond ast.Expr, then, els ast.Stmt) (ast.Stmt, *diag.Error) {
	if !cond.GetType().IsScalar() {
		return nil, b.err(loc, diag.Type, "if condition must be scalar")
	}
	s := &ast.IfStmt{Cond: cond, Then: then, Else: els}
	s.Loc = loc
	return s, nil
}

// For and While are called by the parser before the body is parsed, with a
// nil body; the parser pushes the returned node via PushTarget, parses the
// body with it as target and then sets Body. DoWhile is called after the
// body and condition are parsed and only validates the condition: the
// parser keeps the node it pushed as target and fills in Body and Cond.

func (b *Builder) For(loc ast.Loc, init ast.Stmt, cond ast.Expr, inc ast.Expr, body ast.Stmt) (*ast.ForStmt, *diag.Error) {
	if cond != nil && !cond.GetType().IsScalar() {
		return nil, b.err(loc, diag.Type, "for condition must be scalar")
	}
	s := &ast.ForStmt{Init: init, Cond: cond, Inc: inc, Body: body}
	s.Loc = loc
	return s, nil
}

func (b *Builder) While(loc ast.Loc, cond ast.Expr, body ast.Stmt) (*ast.WhileStmt, *diag.Error) {
	if !cond.GetType().IsScalar() {
		return nil, b.err(loc, diag.Type, "while condition must be scalar")
	}
	s := &ast.WhileStmt{Cond: cond, Body: body}
	s.Loc = loc
	return s, nil
}

func (b *Builder) DoWhile(loc ast.Loc, body ast.Stmt, cond ast.Expr) (*ast.DoWhileStmt, *diag.Error) {
	if !cond.GetType().IsScalar() {
		return nil, b.err(loc, diag.Type, "do-while condition must be scalar")
	}
	s := &ast.DoWhileStmt{Body: body, Cond: cond}
	s.Loc = loc
	return s, nil
}

// Return validates the returned expression against the enclosing
// function's return type; retTy is void for a void function.
func (b *Builder) Return(loc ast.Loc, retTy *ctype.Type, x ast.Expr) (ast.Stmt, *diag.Error) {
	if retTy.IsVoid() {
		if x != nil {
			return nil, b.err(loc, diag.Type, "void function must not return a value")
		}
	} else if x == nil {
		return nil, b.err(loc, diag.Type, "non-void function must return a value")
	} else if !ctype.IsCompatibleAssign(retTy, x.GetType().DecayToPointer()) {
		return nil, b.err(loc, diag.Type, "incompatible type in return")
	}
	s := &ast.ReturnStmt{X: x}
	s.Loc = loc
	return s, nil
}

// Switch builds the switch node; case values are validated by the parser
// via constfold before being attached here (they must be compile-time
// integer constants). Duplicate `default` is rejected.
func (b *Builder) Switch(loc ast.Loc, x ast.Expr) (*ast.SwitchStmt, *diag.Error) {
	if !x.GetType().IsInteger() {
		return nil, b.err(loc, diag.Type, "switch expression must be integer")
	}
	s := &ast.SwitchStmt{X: x}
	s.Loc = loc
	return s, nil
}

// AttachCase records a case under the innermost active switch.
func (b *Builder) AttachCase(loc ast.Loc, value int64, body ast.Stmt) (*ast.CaseStmt, *diag.Error) {
	if len(b.switches) == 0 {
		return nil, b.err(loc, diag.ControlFlow, "'case' outside switch")
	}
	c := &ast.CaseStmt{Value: value, Body: body}
	c.Loc = loc
	sw := b.switches[len(b.switches)-1]
	sw.Cases = append(sw.Cases, c)
	return c, nil
}

// AttachDefault records the default under the innermost active switch,
// rejecting a second default in the same switch.
func (b *Builder) AttachDefault(loc ast.Loc, body ast.Stmt) (*ast.DefaultStmt, *diag.Error) {
	if len(b.switches) == 0 {
		return nil, b.err(loc, diag.ControlFlow, "'default' outside switch")
	}
	sw := b.switches[len(b.switches)-1]
	if sw.Default != nil {
		return nil, b.err(loc, diag.ControlFlow, "multiple 'default' labels in one switch")
	}
	d := &ast.DefaultStmt{Body: body}
	d.Loc = loc
	sw.Default = d
	return d, nil
}
