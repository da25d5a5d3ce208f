package ir

import (
	"bufio"
	"fmt"
	"io"
)

// printer writes the textual SSA IR module spec.md's external-interfaces
// section names as one possible output artifact. Grounded on the
// teacher's ygen/emit.go Emitter (bufio.Writer plus small
// Directive/Label/Raw helpers); generalized from WUT-4 assembly mnemonics
// to this module's own opcode set, since this front end stops at IR and
// never reaches an assembler.
type printer struct {
	out    *bufio.Writer
	valNum map[*Instr]int
	blkNum map[*Block]int
	next   int
}

// Dump writes m's textual form to w: one line per global, then one
// function header plus one line per block/instruction.
func Dump(w io.Writer, m *Module) error {
	p := &printer{out: bufio.NewWriter(w), valNum: map[*Instr]int{}, blkNum: map[*Block]int{}}
	fmt.Fprintf(p.out, "; module %q target %q datalayout %q\n", m.SourceFile, m.TargetTriple, m.DataLayout)
	for _, g := range m.Globals {
		p.global(g)
	}
	for _, f := range m.Functions {
		p.function(f)
	}
	return p.out.Flush()
}

func (p *printer) global(g *Global) {
	if g.Extern {
		fmt.Fprintf(p.out, "declare global %s %s\n", g.Type, g.Name)
		return
	}
	fmt.Fprintf(p.out, "global %s %s = %s\n", g.Type, g.Name, p.initString(g.Init))
}

func (p *printer) initString(gi GlobalInit) string {
	if gi.Scalar != nil {
		return p.val(*gi.Scalar)
	}
	s := "{"
	for i, e := range gi.Elements {
		if i > 0 {
			s += ", "
		}
		s += p.initString(e)
	}
	return s + "}"
}

func (p *printer) function(f *Function) {
	kw := "define"
	if f.External {
		kw = "declare"
	}
	fmt.Fprintf(p.out, "%s %s %s(", kw, f.ReturnType, f.Name)
	for i, prm := range f.Params {
		if i > 0 {
			fmt.Fprint(p.out, ", ")
		}
		fmt.Fprintf(p.out, "%s %%%s", prm.Type, prm.Name)
	}
	if f.Variadic {
		fmt.Fprint(p.out, ", ...")
	}
	fmt.Fprintln(p.out, ") {")

	for i, b := range f.Blocks {
		p.blkNum[b] = i
		for _, in := range b.Instrs {
			if !needsName(in.Op) {
				continue
			}
			p.valNum[in] = p.next
			p.next++
		}
	}
	for _, b := range f.Blocks {
		fmt.Fprintf(p.out, "%s:\n", p.blockLabel(b))
		for _, in := range b.Instrs {
			p.instr(in)
		}
	}
	fmt.Fprintln(p.out, "}")
}

func (p *printer) blockLabel(b *Block) string {
	return fmt.Sprintf("%s.%d", b.Name, p.blkNum[b])
}

func (p *printer) instr(in *Instr) string {
	switch in.Op {
	case OpBr:
		fmt.Fprintf(p.out, "  br %s\n", p.blockLabel(in.Dest))
		return ""
	case OpCondBr:
		fmt.Fprintf(p.out, "  br %s, %s, %s\n", p.val(in.Args[0]), p.blockLabel(in.ThenDest), p.blockLabel(in.ElseDest))
		return ""
	case OpSwitch:
		fmt.Fprintf(p.out, "  switch %s, default %s [", p.val(in.Args[0]), p.blockLabel(in.DefaultDst))
		for i, c := range in.Cases {
			if i > 0 {
				fmt.Fprint(p.out, ", ")
			}
			fmt.Fprintf(p.out, "%d: %s", c.Value, p.blockLabel(c.Dest))
		}
		fmt.Fprintln(p.out, "]")
		return ""
	case OpRet:
		fmt.Fprintf(p.out, "  ret %s\n", p.val(in.Args[0]))
		return ""
	case OpRetVoid:
		fmt.Fprintln(p.out, "  ret void")
		return ""
	case OpStore:
		fmt.Fprintf(p.out, "  store %s, %s\n", p.val(in.Args[0]), p.val(in.Args[1]))
		return ""
	}

	name := fmt.Sprintf("%%t%d", p.valNum[in])

	switch in.Op {
	case OpCall:
		fmt.Fprintf(p.out, "  %s = call %s %s(", name, in.Result.Type(), p.val(in.Callee))
		for i, a := range in.Args {
			if i > 0 {
				fmt.Fprint(p.out, ", ")
			}
			fmt.Fprint(p.out, p.val(a))
		}
		fmt.Fprintln(p.out, ")")
	case OpPhi:
		fmt.Fprintf(p.out, "  %s = phi %s [", name, in.Result.Type())
		for i, e := range in.Incoming {
			if i > 0 {
				fmt.Fprint(p.out, ", ")
			}
			fmt.Fprintf(p.out, "%s: %s", p.blockLabel(e.Block), p.val(e.Value))
		}
		fmt.Fprintln(p.out, "]")
	case OpAlloca:
		fmt.Fprintf(p.out, "  %s = alloca %s\n", name, in.Result.Type().Elem)
	case OpLoad:
		fmt.Fprintf(p.out, "  %s = load %s\n", name, p.val(in.Args[0]))
	case OpGEP:
		fmt.Fprintf(p.out, "  %s = gep %s", name, p.val(in.Args[0]))
		for _, ix := range in.Indices {
			fmt.Fprintf(p.out, ", %d", ix)
		}
		for _, a := range in.Args[1:] {
			fmt.Fprintf(p.out, ", %s", p.val(a))
		}
		fmt.Fprintln(p.out)
	default:
		fmt.Fprintf(p.out, "  %s = %s %s", name, opName(in.Op), p.val(in.Args[0]))
		for _, a := range in.Args[1:] {
			fmt.Fprintf(p.out, ", %s", p.val(a))
		}
		fmt.Fprintln(p.out)
	}
	return name
}

func (p *printer) val(v Value) string {
	switch v.Kind {
	case VConstInt:
		return fmt.Sprintf("%d", v.IConst)
	case VConstFloat:
		return fmt.Sprintf("%g", v.FConst)
	case VConstNull:
		return "null"
	case VConstZero:
		return "zeroinit"
	case VGlobal:
		return "@" + v.Name
	case VParam:
		return "%" + v.Name
	case VInstr:
		return fmt.Sprintf("%%t%d", p.valNum[v.Instr])
	}
	return "?"
}

// needsName reports whether an instruction's Op produces a named SSA
// result (everything except the terminators and store, which have no
// result value).
func needsName(op Op) bool {
	switch op {
	case OpBr, OpCondBr, OpSwitch, OpRet, OpRetVoid, OpStore:
		return false
	}
	return true
}

func opName(op Op) string {
	names := map[Op]string{
		OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDivS: "sdiv", OpDivU: "udiv",
		OpModS: "srem", OpModU: "urem", OpAnd: "and", OpOr: "or", OpXor: "xor",
		OpShl: "shl", OpShrS: "ashr", OpShrU: "lshr",
		OpFAdd: "fadd", OpFSub: "fsub", OpFMul: "fmul", OpFDiv: "fdiv", OpFNeg: "fneg", OpNeg: "neg",
		OpCmpEq: "icmp eq", OpCmpNe: "icmp ne",
		OpCmpLtS: "icmp slt", OpCmpLtU: "icmp ult", OpCmpLeS: "icmp sle", OpCmpLeU: "icmp ule",
		OpCmpGtS: "icmp sgt", OpCmpGtU: "icmp ugt", OpCmpGeS: "icmp sge", OpCmpGeU: "icmp uge",
		OpFCmpEq: "fcmp eq", OpFCmpNe: "fcmp ne", OpFCmpLt: "fcmp lt", OpFCmpLe: "fcmp le",
		OpFCmpGt: "fcmp gt", OpFCmpGe: "fcmp ge",
		OpTrunc: "trunc", OpSExt: "sext", OpZExt: "zext", OpFPTrunc: "fptrunc", OpFPExt: "fpext",
		OpSIToFP: "sitofp", OpUIToFP: "uitofp", OpFPToSI: "fptosi", OpFPToUI: "fptoui",
		OpBitcast: "bitcast", OpPtrToInt: "ptrtoint", OpIntToPtr: "inttoptr",
	}
	if n, ok := names[op]; ok {
		return n
	}
	return "op?"
}
