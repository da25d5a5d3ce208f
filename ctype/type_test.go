package ctype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimitiveLayout(t *testing.T) {
	require.Equal(t, 1, CharType.Size())
	require.Equal(t, 4, IntType.Size())
	require.Equal(t, 8, LongType.Size())
	require.Equal(t, 8, NewPointer(IntType).Size())
	require.True(t, CharType.IsSigned())
	require.False(t, UCharType.IsSigned())
}

func TestStructLayout(t *testing.T) {
	// struct { char a; int b; char c; } -> offsets 0, 4, 8; size 12, align 4
	s := NewRecord("S", Struct)
	s.AddMember("a", CharType)
	s.AddMember("b", IntType)
	s.AddMember("c", CharType)

	require.Equal(t, 0, s.Members[0].Offset)
	require.Equal(t, 4, s.Members[1].Offset)
	require.Equal(t, 8, s.Members[2].Offset)
	require.Equal(t, 12, s.Size())
	require.Equal(t, 4, s.Align())

	for _, m := range s.Members {
		require.Zero(t, m.Offset%m.Type.Align())
	}
	require.Zero(t, s.Size()%s.Align())
}

func TestUnionLayout(t *testing.T) {
	u := NewRecord("U", Union)
	u.AddMember("a", CharType)
	u.AddMember("b", IntType)
	u.AddMember("c", LongType)

	for _, m := range u.Members {
		require.Equal(t, 0, m.Offset)
	}
	require.Equal(t, 8, u.Size())
	require.Equal(t, 8, u.Align())
	require.Equal(t, 2, u.DominantIdx) // 'c' is widest
	require.Equal(t, "c", u.DominantMember().Name)
}

func TestArrayLayout(t *testing.T) {
	a := NewArray(IntType, 3)
	require.Equal(t, 12, a.Size())
	require.Equal(t, 4, a.Align())

	incomplete := NewArray(IntType, -1)
	incomplete.SetArrayLen(5)
	require.Equal(t, 20, incomplete.Size())
}

func TestAnonymousRecordNaming(t *testing.T) {
	tt := &TypeTable{}
	n1 := tt.NewAnonName(Struct)
	n2 := tt.NewAnonName(Union)
	require.Equal(t, "__anony_struct_0_", n1)
	require.Equal(t, "__anony_union_1_", n2)
	require.NotEqual(t, n1, n2)
}

func TestUsualArithConvert(t *testing.T) {
	require.Equal(t, IntType, UsualArithConvert(CharType, CharType))
	require.Equal(t, LongType, UsualArithConvert(IntType, LongType))
	require.Equal(t, DoubleType, UsualArithConvert(IntType, DoubleType))
	require.Equal(t, UIntType, UsualArithConvert(IntType, UIntType))
}

func TestIsCompatibleAssign(t *testing.T) {
	require.True(t, IsCompatibleAssign(IntType, UIntType))
	require.True(t, IsCompatibleAssign(NewPointer(IntType), NewPointer(VoidType)))
	require.False(t, IsCompatibleAssign(NewPointer(IntType), NewPointer(CharType)))
}
