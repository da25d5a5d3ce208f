package lexer

import (
	"testing"

	"github.com/cfront/cfront/ctype"
	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, src string) []Token {
	l := New([]byte(src), "t.c")
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestIdentifiersAndKeywords(t *testing.T) {
	toks := allTokens(t, "int foo_bar return")
	require.Len(t, toks, 3)
	require.Equal(t, Keyword, toks[0].Kind)
	require.Equal(t, Ident, toks[1].Kind)
	require.Equal(t, Keyword, toks[2].Kind)
}

func TestIntegerLiteralSuffixesAndBases(t *testing.T) {
	toks := allTokens(t, "42 0x2A 0b101010 052 42u 42L")
	require.Equal(t, int64(42), toks[0].IVal)
	require.Equal(t, ctype.IntType, toks[0].NumType)
	require.Equal(t, int64(42), toks[1].IVal)
	require.Equal(t, int64(42), toks[2].IVal)
	require.Equal(t, int64(42), toks[3].IVal)
	require.Equal(t, ctype.UIntType, toks[4].NumType)
	require.Equal(t, ctype.LongType, toks[5].NumType)
}

func TestFloatLiteral(t *testing.T) {
	toks := allTokens(t, "3.14 2.0f 1e10")
	require.Equal(t, FloatLit, toks[0].Kind)
	require.InDelta(t, 3.14, toks[0].DVal, 1e-9)
	require.Equal(t, ctype.FloatType, toks[1].NumType)
	require.Equal(t, ctype.DoubleType, toks[2].NumType)
}

func TestCharLiteralEscapes(t *testing.T) {
	toks := allTokens(t, `'a' '\n' '\\' '\x41'`)
	require.Equal(t, int64('a'), toks[0].IVal)
	require.Equal(t, int64('\n'), toks[1].IVal)
	require.Equal(t, int64('\\'), toks[2].IVal)
	require.Equal(t, int64('A'), toks[3].IVal)
}

func TestStringLiteralEscapes(t *testing.T) {
	toks := allTokens(t, `"hi\n" "a\"b"`)
	require.Equal(t, "hi\n", toks[0].SVal)
	require.Equal(t, `a"b`, toks[1].SVal)
}

func TestPunctuatorsLongestMatchFirst(t *testing.T) {
	toks := allTokens(t, "<<= >> -> ++ < <=")
	require.Equal(t, "<<=", toks[0].Text)
	require.Equal(t, ">>", toks[1].Text)
	require.Equal(t, "->", toks[2].Text)
	require.Equal(t, "++", toks[3].Text)
	require.Equal(t, "<", toks[4].Text)
	require.Equal(t, "<=", toks[5].Text)
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := allTokens(t, "int /* comment */ x; // trailing\n int y;")
	require.Len(t, toks, 6) // int x ; int y ;
}

func TestCheckpointRestore(t *testing.T) {
	l := New([]byte("int x;"), "t.c")
	first, _ := l.Next()
	require.Equal(t, "int", first.Text)

	l.Checkpoint()
	second, _ := l.Next()
	require.Equal(t, "x", second.Text)
	l.Restore()

	again, _ := l.Next()
	require.Equal(t, "x", again.Text)
}

func TestNestedCheckpoints(t *testing.T) {
	l := New([]byte("a b c"), "t.c")
	l.Checkpoint()
	l.Next() // a
	l.Checkpoint()
	l.Next() // b
	l.Restore()
	tok, _ := l.Next()
	require.Equal(t, "b", tok.Text)
	l.Restore()
	tok2, _ := l.Next()
	require.Equal(t, "a", tok2.Text)
}
