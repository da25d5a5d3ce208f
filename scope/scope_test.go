package scope

import (
	"testing"

	"github.com/cfront/cfront/ctype"
	"github.com/stretchr/testify/require"
)

func TestNamespacesAreIndependent(t *testing.T) {
	s := New()
	s.AddOrdinary(&Symbol{Name: "foo", Kind: KindVar, Type: ctype.IntType})
	s.AddTag("foo", ctype.NewRecord("foo", ctype.Struct))

	_, okOrd := s.FindOrdinary("foo")
	_, okTag := s.FindTag("foo")
	require.True(t, okOrd)
	require.True(t, okTag)

	// a typedef named "foo" does not collide with either
	s.AddTypedef("foo", ctype.IntType)
	_, okTd := s.FindTypedef("foo")
	require.True(t, okTd)
}

func TestNestedScopeShadowing(t *testing.T) {
	s := New()
	s.AddOrdinary(&Symbol{Name: "x", Kind: KindVar, Type: ctype.IntType})

	s.Enter()
	s.AddOrdinary(&Symbol{Name: "x", Kind: KindVar, Type: ctype.CharType})
	inner, ok := s.FindOrdinary("x")
	require.True(t, ok)
	require.Equal(t, ctype.CharType, inner.Type)
	s.Exit()

	outer, ok := s.FindOrdinary("x")
	require.True(t, ok)
	require.Equal(t, ctype.IntType, outer.Type)
}

func TestFindOrdinaryCurrentDoesNotWalkOutward(t *testing.T) {
	s := New()
	s.AddOrdinary(&Symbol{Name: "g", Kind: KindVar, Type: ctype.IntType})
	s.Enter()
	_, ok := s.FindOrdinaryCurrent("g")
	require.False(t, ok)
	_, ok = s.FindOrdinary("g")
	require.True(t, ok)
	s.Exit()
}
