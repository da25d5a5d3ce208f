package ctype

// UsualArithConvert computes the common type two arithmetic operands
// convert to before a binary operator is applied, per the integer-only
// usual arithmetic conversions: any double operand -> both double; else
// any float -> both float; else both widen to at least int and then to
// the wider of the two, preferring unsigned when ranks tie.
func UsualArithConvert(a, b *Type) *Type {
	if a.Kind == Double || b.Kind == Double || a.Kind == LDouble || b.Kind == LDouble {
		if a.Kind == LDouble || b.Kind == LDouble {
			return LDoubleType
		}
		return DoubleType
	}
	if a.Kind == Float || b.Kind == Float {
		return FloatType
	}
	ap := promoteInt(a)
	bp := promoteInt(b)
	if ap.IntRank() == bp.IntRank() {
		if !ap.IsSigned() || !bp.IsSigned() {
			return unsignedOfRank(ap.IntRank())
		}
		return ap
	}
	if ap.IntRank() > bp.IntRank() {
		return widerOperand(ap, bp)
	}
	return widerOperand(bp, ap)
}

// widerOperand always returns wide, the operand of higher rank, whatever
// the signedness of narrow. long and long long are both 8 bytes on this
// target, so long long with unsigned long yields (signed) long long.
func widerOperand(wide, narrow *Type) *Type {
	return wide
}

// promoteInt applies integer promotion: anything narrower than int
// promotes to int (signed int can represent all char/short values,
// signed or unsigned, on this target).
func promoteInt(t *Type) *Type {
	if t.IntRank() < IntType.IntRank() {
		return IntType
	}
	return t
}

func unsignedOfRank(rank int) *Type {
	switch rank {
	case 3:
		return UIntType
	case 4:
		return ULongType
	case 5:
		return ULLongType
	}
	return UIntType
}

// IsCompatibleAssign reports whether a value of type src may be assigned
// (implicitly converted) to a variable of type dst. Unlike the teacher's
// YAPL rule (same-Kind-required), this follows C: any two arithmetic types
// are compatible (subject to implicit conversion), pointers are compatible
// with pointers to compatible or void types and with integer null-pointer
// constants handled upstream by Sema, and records/functions require exact
// structural match.
func IsCompatibleAssign(dst, src *Type) bool {
	if dst.IsArith() && src.IsArith() {
		return true
	}
	if dst.IsPointer() && src.IsPointer() {
		if dst.Elem.IsVoid() || src.Elem.IsVoid() {
			return true
		}
		return dst.Elem.Equal(src.Elem)
	}
	if dst.IsPointer() && src.IsArray() {
		return dst.Elem.Equal(src.Elem)
	}
	return dst.Equal(src)
}
