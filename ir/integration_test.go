package ir_test

// End-to-end tests driving the whole front end (lexer -> parser+sema ->
// IR emitter) against the module's own fixed opcode set. Since the real
// backend is an external collaborator (spec §1's "OUT OF SCOPE" boundary),
// these tests stand in a tiny tree-walking interpreter over the emitted
// ir.Module instead of invoking one — the "test backend can be a plain
// data recorder" design note, taken one step further into "a plain data
// executor" so the end-to-end return-value scenarios are actually
// checked rather than merely parsed.

import (
	"testing"

	"github.com/cfront/cfront/ir"
	"github.com/cfront/cfront/parser"
	"github.com/cfront/cfront/sema"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *ir.Module {
	t.Helper()
	b := sema.New()
	prog, err := parser.Parse([]byte(src), "t.c", b)
	require.Nil(t, err, "parse/sema error: %v", err)
	return ir.Emit(prog, "x86_64-unknown-linux-gnu")
}

func runMain(t *testing.T, src string) int64 {
	t.Helper()
	mod := compile(t, src)
	var fn *ir.Function
	for _, f := range mod.Functions {
		if f.Name == "main" {
			fn = f
		}
	}
	require.NotNil(t, fn, "no main() in module")
	v := execCall(t, mod, fn, nil)
	return v.i
}

func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want int64
	}{
		{"compound-assign", `int main(){int a=3,b=5;a+=b;return a;}`, 8},
		{"array-subscript", `int main(){int a[3]={1,101};return a[1];}`, 101},
		{"anon-struct-init", `int main(){struct{int a,b;}x={1,2};return x.a+x.b;}`, 3},
		{"for-loop", `int main(){int a=10; for(int i=0;i<5;i=i+1) a=a+1; return a;}`, 15},
		{"function-call-loop", `int sum(int n){int r=0;for(int i=0;i<=n;i=i+1)r+=i;return r;}int main(){return sum(10);}`, 55},
		{"switch-fallthrough", `int main(){char g='B';int r=g; switch(g){case 'A':break; case 'B': case 'C': r+=1; break;} return r;}`, 67},
		{"pointer-arg", `int f(int *p){return *p;} int main(){int x=42;return f(&x);}`, 42},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, runMain(t, c.src))
		})
	}
}

// TestEveryBlockTerminated checks invariant 4 from spec §8: every basic
// block of an emitted function ends in a terminator.
func TestEveryBlockTerminated(t *testing.T) {
	mod := compile(t, `int main(){int a=10; for(int i=0;i<5;i=i+1) a=a+1; return a;}`)
	for _, fn := range mod.Functions {
		for _, blk := range fn.Blocks {
			require.True(t, blk.Terminated(), "block %s in %s has no terminator", blk.Name, fn.Name)
		}
	}
}

// ---------------------------------------------------------------------
// A minimal tree-walking interpreter over ir.Module/Function/Block, just
// enough to execute the opcodes the end-to-end scenarios above exercise.
// ---------------------------------------------------------------------

type rtValue struct {
	i       int64
	f       float64
	isFloat bool
	ptr     *cell
}

// cell is one piece of storage: either a scalar value or, for arrays and
// records, a list of sub-cells addressed by GEP.
type cell struct {
	scalar   rtValue
	children []*cell
}

func newCell(ty interface{ Size() int }) *cell { return &cell{} }

func execCall(t *testing.T, mod *ir.Module, fn *ir.Function, args []rtValue) rtValue {
	t.Helper()
	ex := &execState{
		t:      t,
		mod:    mod,
		regs:   make(map[*ir.Instr]rtValue),
		slots:  make(map[string]*cell),
		params: make(map[string]rtValue),
	}
	for i, p := range fn.Params {
		if i < len(args) {
			ex.params[p.Name] = args[i]
		}
	}
	return ex.run(fn)
}

type execState struct {
	t      *testing.T
	mod    *ir.Module
	regs   map[*ir.Instr]rtValue
	slots  map[string]*cell // named alloca cells, by the slot instruction's own identity via a side table
	allocs map[*ir.Instr]*cell
	params map[string]rtValue

	prevBlock *ir.Block
}

func (ex *execState) run(fn *ir.Function) rtValue {
	if ex.allocs == nil {
		ex.allocs = make(map[*ir.Instr]*cell)
	}
	var prev, cur *ir.Block
	cur = fn.Blocks[0]
	for {
		var term *ir.Instr
		for _, in := range cur.Instrs {
			if isTerminator(in.Op) {
				term = in
				break
			}
			ex.exec(in)
		}
		ex.t.Helper()
		require.NotNil(ex.t, term, "block %s has no terminator", cur.Name)
		switch term.Op {
		case ir.OpRet:
			return ex.eval(term.Args[0])
		case ir.OpRetVoid:
			return rtValue{}
		case ir.OpBr:
			prev, cur = cur, term.Dest
		case ir.OpCondBr:
			cond := ex.eval(term.Args[0])
			prev = cur
			if cond.i != 0 {
				cur = term.ThenDest
			} else {
				cur = term.ElseDest
			}
		case ir.OpSwitch:
			x := ex.eval(term.Args[0])
			dest := term.DefaultDst
			for _, c := range term.Cases {
				if c.Value == x.i {
					dest = c.Dest
					break
				}
			}
			prev, cur = cur, dest
		default:
			ex.t.Fatalf("unexpected terminator op %v", term.Op)
		}
		_ = prev
		ex.prevBlock = prev
	}
}

// prevBlock is threaded through run via execState so phi lookups can see
// which predecessor was actually taken (right evaluation of && / || may
// create new blocks, so the predecessor is never assumed to be the
// textually-preceding one).
var _ = (*execState)(nil)

func (ex *execState) exec(in *ir.Instr) {
	switch in.Op {
	case ir.OpAlloca:
		c := &cell{}
		ex.allocs[in] = c
		ex.regs[in] = rtValue{ptr: c}
	case ir.OpStore:
		addr := ex.eval(in.Args[0])
		val := ex.eval(in.Args[1])
		addr.ptr.scalar = val
	case ir.OpLoad:
		addr := ex.eval(in.Args[0])
		ex.regs[in] = addr.ptr.scalar
	case ir.OpGEP:
		base := ex.eval(in.Args[0])
		c := base.ptr
		for _, idx := range in.Indices {
			c = ex.childAt(c, idx)
		}
		if len(in.Args) > 1 {
			n := ex.eval(in.Args[1])
			c = ex.childAt(c, int(n.i))
		}
		ex.regs[in] = rtValue{ptr: c}
	case ir.OpPhi:
		for _, e := range in.Incoming {
			if e.Block == ex.prevBlock {
				ex.regs[in] = ex.eval(e.Value)
				return
			}
		}
		ex.t.Fatalf("phi with no matching predecessor")
	case ir.OpCall:
		var callArgs []rtValue
		for _, a := range in.Args {
			callArgs = append(callArgs, ex.eval(a))
		}
		callee := ex.findFunc(in.Callee)
		ex.regs[in] = execCall(ex.t, ex.mod, callee, callArgs)
	case ir.OpNeg:
		a := ex.eval(in.Args[0])
		ex.regs[in] = rtValue{i: -a.i}
	case ir.OpXor:
		a, b := ex.eval(in.Args[0]), ex.eval(in.Args[1])
		ex.regs[in] = rtValue{i: a.i ^ b.i}
	case ir.OpZExt, ir.OpSExt, ir.OpTrunc:
		ex.regs[in] = ex.eval(in.Args[0])
	default:
		ex.execArith(in)
	}
}

func (ex *execState) execArith(in *ir.Instr) {
	a := ex.eval(in.Args[0])
	var b rtValue
	if len(in.Args) > 1 {
		b = ex.eval(in.Args[1])
	}
	var r rtValue
	switch in.Op {
	case ir.OpAdd, ir.OpFAdd:
		r = rtValue{i: a.i + b.i}
	case ir.OpSub, ir.OpFSub:
		r = rtValue{i: a.i - b.i}
	case ir.OpMul, ir.OpFMul:
		r = rtValue{i: a.i * b.i}
	case ir.OpDivS, ir.OpDivU, ir.OpFDiv:
		r = rtValue{i: a.i / b.i}
	case ir.OpModS, ir.OpModU:
		r = rtValue{i: a.i % b.i}
	case ir.OpAnd:
		r = rtValue{i: a.i & b.i}
	case ir.OpOr:
		r = rtValue{i: a.i | b.i}
	case ir.OpShl:
		r = rtValue{i: a.i << uint(b.i)}
	case ir.OpShrS, ir.OpShrU:
		r = rtValue{i: a.i >> uint(b.i)}
	case ir.OpCmpEq, ir.OpFCmpEq:
		r = boolVal(a.i == b.i)
	case ir.OpCmpNe, ir.OpFCmpNe:
		r = boolVal(a.i != b.i)
	case ir.OpCmpLtS, ir.OpCmpLtU, ir.OpFCmpLt:
		r = boolVal(a.i < b.i)
	case ir.OpCmpLeS, ir.OpCmpLeU, ir.OpFCmpLe:
		r = boolVal(a.i <= b.i)
	case ir.OpCmpGtS, ir.OpCmpGtU, ir.OpFCmpGt:
		r = boolVal(a.i > b.i)
	case ir.OpCmpGeS, ir.OpCmpGeU, ir.OpFCmpGe:
		r = boolVal(a.i >= b.i)
	default:
		ex.t.Fatalf("unhandled opcode %v in interpreter", in.Op)
	}
	ex.regs[in] = r
}

func boolVal(b bool) rtValue {
	if b {
		return rtValue{i: 1}
	}
	return rtValue{i: 0}
}

func (ex *execState) childAt(c *cell, idx int) *cell {
	for len(c.children) <= idx {
		c.children = append(c.children, &cell{})
	}
	return c.children[idx]
}

func (ex *execState) eval(v ir.Value) rtValue {
	switch v.Kind {
	case ir.VConstInt, ir.VConstNull, ir.VConstZero:
		return rtValue{i: v.IConst}
	case ir.VConstFloat:
		return rtValue{f: v.FConst, isFloat: true, i: int64(v.FConst)}
	case ir.VInstr:
		return ex.regs[v.Instr]
	case ir.VParam:
		return ex.params[v.Name]
	case ir.VGlobal:
		return rtValue{}
	}
	return rtValue{}
}

func (ex *execState) findFunc(callee ir.Value) *ir.Function {
	for _, f := range ex.mod.Functions {
		if f.Name == callee.Name {
			return f
		}
	}
	ex.t.Fatalf("call to unknown function %q", callee.Name)
	return nil
}

func isTerminator(op ir.Op) bool {
	switch op {
	case ir.OpBr, ir.OpCondBr, ir.OpSwitch, ir.OpRet, ir.OpRetVoid:
		return true
	}
	return false
}
