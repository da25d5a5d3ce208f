// Package ctype implements the C type system: a closed variant of
// primitive, pointer, array, record, and function types, with the size,
// alignment, and signedness rules the rest of the front end depends on.
package ctype

import "fmt"

// Kind tags the variant a Type belongs to.
type Kind int

const (
	Void Kind = iota
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LLong
	ULLong
	Float
	Double
	LDouble
	Pointer
	Array
	Record
	Function
)

// TagKind distinguishes struct from union records.
type TagKind int

const (
	Struct TagKind = iota
	Union
)

func (t TagKind) String() string {
	if t == Union {
		return "union"
	}
	return "struct"
}

// Numeric layout per the target: char=1 short=2 int=4 long=8 long long=8
// pointer=8 float=4 double=8 long double=8.
var primitiveLayout = map[Kind]struct {
	size   int
	align  int
	signed bool
}{
	Void:    {0, 1, false},
	Char:    {1, 1, true},
	UChar:   {1, 1, false},
	Short:   {2, 2, true},
	UShort:  {2, 2, false},
	Int:     {4, 4, true},
	UInt:    {4, 4, false},
	Long:    {8, 8, true},
	ULong:   {8, 8, false},
	LLong:   {8, 8, true},
	ULLong:  {8, 8, false},
	Float:   {4, 4, true},
	Double:  {8, 8, true},
	LDouble: {8, 8, true},
}

// Member describes one field of a record type.
type Member struct {
	Type   *Type
	Name   string
	Offset int
	Index  int
}

// Param describes one function parameter.
type Param struct {
	Type *Type
	Name string
}

// Type is the single representation for every C type the front end deals
// with. Only the fields relevant to Kind are meaningful; this mirrors the
// teacher's tagged-struct style (types.go's Type{Kind,Base,...}) generalized
// to the full C variant set.
type Type struct {
	Kind Kind

	// Pointer / Array
	Elem     *Type
	ArrayLen int // -1 means incomplete / to-be-inferred

	// Record
	Name    string
	Tag     TagKind
	Members []Member
	// DominantIdx is the index of the widest member seen so far, used to
	// lower a union as a struct-of-one-element; ties resolve to the first
	// member reaching that width, mirroring GetMaxElementIdx's tracking.
	DominantIdx int

	// Function
	Return   *Type
	Params   []Param
	Variadic bool
	HasBody  bool

	size  int
	align int
	sign  bool
}

// TypeTable owns the monotonic counter behind anonymous record names, so
// every anonymous struct/union in a translation unit gets a unique name
// regardless of which call site created it.
type TypeTable struct {
	nextAnonID int
}

// NewAnonName returns the next "__anony_{struct|union}_{n}_" name.
func (t *TypeTable) NewAnonName(tag TagKind) string {
	n := t.nextAnonID
	t.nextAnonID++
	return fmt.Sprintf("__anony_%s_%d_", tag, n)
}

var (
	VoidType   = &Type{Kind: Void, size: 0, align: 1}
	CharType   = &Type{Kind: Char, size: 1, align: 1, sign: true}
	UCharType  = &Type{Kind: UChar, size: 1, align: 1}
	ShortType  = &Type{Kind: Short, size: 2, align: 2, sign: true}
	UShortType = &Type{Kind: UShort, size: 2, align: 2}
	IntType    = &Type{Kind: Int, size: 4, align: 4, sign: true}
	UIntType   = &Type{Kind: UInt, size: 4, align: 4}
	LongType   = &Type{Kind: Long, size: 8, align: 8, sign: true}
	ULongType  = &Type{Kind: ULong, size: 8, align: 8}
	LLongType  = &Type{Kind: LLong, size: 8, align: 8, sign: true}
	ULLongType = &Type{Kind: ULLong, size: 8, align: 8}
	FloatType  = &Type{Kind: Float, size: 4, align: 4, sign: true}
	DoubleType = &Type{Kind: Double, size: 8, align: 8, sign: true}
	LDoubleType = &Type{Kind: LDouble, size: 8, align: 8, sign: true}
)

// NewPointer builds a pointer-to-base type.
func NewPointer(base *Type) *Type {
	return &Type{Kind: Pointer, Elem: base, size: 8, align: 8}
}

// NewArray builds an array(T,N) type; n == -1 marks it incomplete.
func NewArray(elem *Type, n int) *Type {
	t := &Type{Kind: Array, Elem: elem, ArrayLen: n}
	t.recomputeArrayLayout()
	return t
}

func (t *Type) recomputeArrayLayout() {
	if t.ArrayLen < 0 {
		t.size = 0
		t.align = t.Elem.Align()
		return
	}
	t.size = t.ArrayLen * t.Elem.Size()
	t.align = t.Elem.Align()
}

// SetArrayLen finalizes an incomplete array's length, e.g. after inferring
// it from a brace-initializer count or a string literal length.
func (t *Type) SetArrayLen(n int) {
	t.ArrayLen = n
	t.recomputeArrayLayout()
}

// NewRecord creates an empty struct/union of the given tag kind; fields
// are added with AddMember.
func NewRecord(name string, tag TagKind) *Type {
	return &Type{Kind: Record, Name: name, Tag: tag, DominantIdx: -1}
}

// AddMember appends a field, updating the record's offset/size/align
// according to struct or union layout rules.
func (t *Type) AddMember(name string, mt *Type) {
	idx := len(t.Members)
	var offset int
	if t.Tag == Struct {
		offset = t.updateStructOffset(mt)
	} else {
		offset = t.updateUnionOffset(mt, idx)
	}
	t.Members = append(t.Members, Member{Type: mt, Name: name, Offset: offset, Index: idx})
}

// updateStructOffset lays the next member out after the current running
// size, rounding up to the member's alignment, then grows total size/align.
func (t *Type) updateStructOffset(mt *Type) int {
	offset := alignUp(t.size, mt.Align())
	t.size = offset + mt.Size()
	if mt.Align() > t.align {
		t.align = mt.Align()
	}
	t.size = alignUp(t.size, t.align)
	return offset
}

// updateUnionOffset places every member at offset 0 and tracks which
// member is dominant (the widest one seen so far) for IR lowering.
func (t *Type) updateUnionOffset(mt *Type, idx int) int {
	if mt.Size() > t.size {
		t.size = mt.Size()
		t.DominantIdx = idx
	}
	if mt.Align() > t.align {
		t.align = mt.Align()
	}
	t.size = alignUp(t.size, t.align)
	return 0
}

// DominantMember returns the union's single dominant member (by largest
// size) used when emitting a union as a struct-of-one-element. Panics if
// called on a non-union or empty union — callers are expected to have
// checked Tag == Union and len(Members) > 0 first.
func (t *Type) DominantMember() Member {
	return t.Members[t.DominantIdx]
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// NewFunction builds a function(ret, params, variadic) type.
func NewFunction(ret *Type, params []Param, variadic bool) *Type {
	return &Type{Kind: Function, Return: ret, Params: params, Variadic: variadic, size: 0, align: 1}
}

// Size returns the type's size in bytes.
func (t *Type) Size() int {
	if t.Kind >= Void && t.Kind <= LDouble {
		return primitiveLayout[t.Kind].size
	}
	return t.size
}

// Align returns the type's alignment in bytes (a power of two).
func (t *Type) Align() int {
	if t.Kind >= Void && t.Kind <= LDouble {
		return primitiveLayout[t.Kind].align
	}
	return t.align
}

// IsSigned reports the type's signedness; meaningless for non-arithmetic
// kinds.
func (t *Type) IsSigned() bool {
	if t.Kind >= Void && t.Kind <= LDouble {
		return primitiveLayout[t.Kind].signed
	}
	return t.sign
}

func (t *Type) IsInteger() bool {
	switch t.Kind {
	case Char, UChar, Short, UShort, Int, UInt, Long, ULong, LLong, ULLong:
		return true
	}
	return false
}

func (t *Type) IsFloat() bool {
	switch t.Kind {
	case Float, Double, LDouble:
		return true
	}
	return false
}

func (t *Type) IsArith() bool { return t.IsInteger() || t.IsFloat() }

func (t *Type) IsPointer() bool  { return t.Kind == Pointer }
func (t *Type) IsArray() bool    { return t.Kind == Array }
func (t *Type) IsRecord() bool   { return t.Kind == Record }
func (t *Type) IsFunction() bool { return t.Kind == Function }
func (t *Type) IsVoid() bool     { return t.Kind == Void }
func (t *Type) IsScalar() bool   { return t.IsArith() || t.IsPointer() }

// DecayToPointer implements array-to-pointer decay (e.g. for call
// arguments and most expression contexts).
func (t *Type) DecayToPointer() *Type {
	if t.Kind == Array {
		return NewPointer(t.Elem)
	}
	return t
}

// IntRank gives a total order over integer kinds for usual-arithmetic
// conversion, independent of signedness.
func (t *Type) IntRank() int {
	switch t.Kind {
	case Char, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt:
		return 3
	case Long, ULong:
		return 4
	case LLong, ULLong:
		return 5
	}
	return 0
}

func (t *Type) String() string {
	switch t.Kind {
	case Void:
		return "void"
	case Char:
		return "char"
	case UChar:
		return "unsigned char"
	case Short:
		return "short"
	case UShort:
		return "unsigned short"
	case Int:
		return "int"
	case UInt:
		return "unsigned int"
	case Long:
		return "long"
	case ULong:
		return "unsigned long"
	case LLong:
		return "long long"
	case ULLong:
		return "unsigned long long"
	case Float:
		return "float"
	case Double:
		return "double"
	case LDouble:
		return "long double"
	case Pointer:
		return fmt.Sprintf("%s*", t.Elem)
	case Array:
		if t.ArrayLen < 0 {
			return fmt.Sprintf("%s[]", t.Elem)
		}
		return fmt.Sprintf("%s[%d]", t.Elem, t.ArrayLen)
	case Record:
		return fmt.Sprintf("%s %s", t.Tag, t.Name)
	case Function:
		return fmt.Sprintf("%s(...)", t.Return)
	}
	return "<?type>"
}

// Equal reports structural equality, which is what typedef aliasing and
// redeclaration compatibility checks need (two distinct *Type values for
// "int" must still compare equal).
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Pointer:
		return t.Elem.Equal(o.Elem)
	case Array:
		return t.ArrayLen == o.ArrayLen && t.Elem.Equal(o.Elem)
	case Record:
		return t.Name == o.Name && t.Tag == o.Tag
	case Function:
		if !t.Return.Equal(o.Return) || t.Variadic != o.Variadic || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Type.Equal(o.Params[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
