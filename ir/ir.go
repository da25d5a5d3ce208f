// Package ir is the SSA IR emitter: a post-order walk over the typed AST
// that populates an IR module. Module/function/block/value are modeled as
// small Go types rather than concrete backend pointers (per the design
// note "abstract the IR as an interface... so the front-end does not
// depend on any concrete backend"), grounded on the shape of the teacher's
// ysem/ir.go (IR/IRFunc/IRInstr structs) but redesigned around real basic
// blocks with phi nodes instead of a flat instruction list with label/jump
// pseudo-ops.
package ir

import "github.com/cfront/cfront/ctype"

// Op is the fixed opcode set the backend boundary promises: arithmetic,
// comparison, load, store, gep-indexed-address, cast family, call,
// branch, conditional branch, switch, phi, return.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDivS
	OpDivU
	OpModS
	OpModU
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShrS
	OpShrU
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFNeg
	OpNeg

	OpCmpEq
	OpCmpNe
	OpCmpLtS
	OpCmpLtU
	OpCmpLeS
	OpCmpLeU
	OpCmpGtS
	OpCmpGtU
	OpCmpGeS
	OpCmpGeU
	OpFCmpEq
	OpFCmpNe
	OpFCmpLt
	OpFCmpLe
	OpFCmpGt
	OpFCmpGe

	OpAlloca
	OpLoad
	OpStore
	OpGEP

	OpTrunc
	OpSExt
	OpZExt
	OpFPTrunc
	OpFPExt
	OpSIToFP
	OpUIToFP
	OpFPToSI
	OpFPToUI
	OpBitcast
	OpPtrToInt
	OpIntToPtr

	OpCall
	OpBr
	OpCondBr
	OpSwitch
	OpPhi
	OpRet
	OpRetVoid
)

// ValueKind tags what a Value denotes.
type ValueKind int

const (
	VConstInt ValueKind = iota
	VConstFloat
	VConstNull
	VConstZero // recursive zero constant for an aggregate type
	VInstr     // the result of an instruction in some block
	VGlobal
	VParam
)

// Value is the single SSA value representation: a tagged reference,
// mirroring the AST's own tagged-variant style rather than introducing a
// second polymorphism mechanism for the same purpose.
type Value struct {
	Kind ValueKind
	Ty   *ctype.Type

	IConst int64
	FConst float64

	// VInstr
	Block *Block
	Instr *Instr

	// VGlobal / VParam
	Name string
}

func (v Value) Type() *ctype.Type { return v.Ty }

// Instr is one instruction within a block.
type Instr struct {
	Op     Op
	Result Value
	Args   []Value
	// GEP
	Indices []int
	// Switch
	Cases      []SwitchCase
	DefaultDst *Block
	// Br/CondBr
	Dest      *Block
	ThenDest  *Block
	ElseDest  *Block
	// Phi
	Incoming []PhiEdge
	// Call
	Callee Value
}

type SwitchCase struct {
	Value int64
	Dest  *Block
}

type PhiEdge struct {
	Block *Block
	Value Value
}

// Block is a basic block: a straight-line instruction sequence ending in
// exactly one terminator (Br/CondBr/Switch/Ret/RetVoid) once emission of
// that block is complete.
type Block struct {
	Name  string
	Instrs []*Instr
}

func (b *Block) Terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	switch b.Instrs[len(b.Instrs)-1].Op {
	case OpBr, OpCondBr, OpSwitch, OpRet, OpRetVoid:
		return true
	}
	return false
}

func (b *Block) append(i *Instr) *Instr {
	b.Instrs = append(b.Instrs, i)
	return i
}

// Param is one function parameter in the IR signature.
type Param struct {
	Name string
	Type *ctype.Type
}

// Function is one IR function: a parameter list, an entry-ordered list of
// basic blocks, and the stack slots (allocas) that live in its entry
// block.
type Function struct {
	Name       string
	ReturnType *ctype.Type
	Params     []Param
	Variadic   bool
	Blocks     []*Block
	External   bool // declaration only, no body

	blockCounter int
	instrCounter int
}

func (f *Function) NewBlock(hint string) *Block {
	b := &Block{Name: hint}
	f.blockCounter++
	f.Blocks = append(f.Blocks, b)
	return b
}

func (f *Function) nextInstrID() int {
	f.instrCounter++
	return f.instrCounter
}

// GlobalInit is the compile-time constant initializer tree for a global
// variable: either a flat scalar value or a recursive list of per-field/
// per-element initializers. A list runs only up to the highest index that
// an initializer sets; an element below that index which nothing sets is
// an empty GlobalInit (no Scalar, no Elements), and elements past it are
// not listed.
type GlobalInit struct {
	Scalar   *Value
	Elements []GlobalInit
}

// Global is a module-level variable.
type Global struct {
	Name   string
	Type   *ctype.Type
	Init   GlobalInit
	Extern bool
}

// Module is the emitter's top-level output: a file-name identifier, a
// target triple, a data layout, and an ordered list of global entities.
type Module struct {
	SourceFile   string
	TargetTriple string
	DataLayout   string
	Globals      []*Global
	Functions    []*Function
}

func NewModule(sourceFile, triple string) *Module {
	return &Module{SourceFile: sourceFile, TargetTriple: triple, DataLayout: "e"}
}

func (m *Module) NewFunction(name string, retTy *ctype.Type, params []Param, variadic bool) *Function {
	f := &Function{Name: name, ReturnType: retTy, Params: params, Variadic: variadic}
	m.Functions = append(m.Functions, f)
	return f
}

func (m *Module) NewGlobal(name string, ty *ctype.Type) *Global {
	g := &Global{Name: name, Type: ty}
	m.Globals = append(m.Globals, g)
	return g
}
