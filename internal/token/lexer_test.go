package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_Punctuators(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Kind
	}{
		{"single chars", "+-*/(){},;:.![]=<>", []Kind{
			Plus, Minus, Asterisk, Slash, LeftParen, RightParen, LeftBrace,
			RightBrace, Comma, Semicolon, Colon, Dot, Bang, LeftBracket,
			RightBracket, Equal, LessThan, GreaterThan,
		}},
		{"and/or", "&& ||", []Kind{And, Or}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := New(tc.input).Tokenize()
			require.NoError(t, err)
			require.Len(t, toks, len(tc.expect))
			for i, k := range tc.expect {
				assert.Equal(t, k, toks[i].Kind, "token %d", i)
			}
		})
	}
}

func TestTokenize_LoneAmpersandFails(t *testing.T) {
	_, err := New("& x").Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected character '&'")
}

func TestTokenize_LonePipeFails(t *testing.T) {
	_, err := New("a | b").Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected character '|'")
}

func TestTokenize_Identifiers_KeywordsAndBuiltins(t *testing.T) {
	toks, err := New("func foo @vertex _bar123").Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, Keyword, toks[0].Kind)
	assert.Equal(t, "func", toks[0].Lexeme)
	assert.Equal(t, Identifier, toks[1].Kind)
	assert.Equal(t, "foo", toks[1].Lexeme)
	assert.Equal(t, Builtin, toks[2].Kind)
	assert.Equal(t, "vertex", toks[2].Lexeme)
	assert.Equal(t, Identifier, toks[3].Kind)
	assert.Equal(t, "_bar123", toks[3].Lexeme)
}

func TestTokenize_Numbers(t *testing.T) {
	toks, err := New("42 3.14").Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, "3.14", toks[1].Lexeme)
}

func TestTokenize_StringLiteral(t *testing.T) {
	toks, err := New(`"hello world"`).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Lexeme)
}

func TestTokenize_CommentsAreSkipped(t *testing.T) {
	toks, err := New("// comment\n42 /* block\ncomment */ 7").Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, "7", toks[1].Lexeme)
}

func TestTokenize_UnknownCharacterFails(t *testing.T) {
	_, err := New("$").Tokenize()
	require.Error(t, err)
}

// RoundTrip verifies the lexer round-trip invariant from spec.md §8: for
// every token, source[Start:End+1] reproduces the stored lexeme for
// fixed-width and literal tokens, and for Builtin tokens the range includes
// the leading '@'.
func TestTokenize_RoundTrip(t *testing.T) {
	src := `@hana latest; func main ( ) -> void { x = 1 ; } use hana::raytracing ;`
	toks, err := New(src).Tokenize()
	require.NoError(t, err)
	for _, tok := range toks {
		require.True(t, tok.Start <= tok.End, "token %v has Start > End", tok)
		require.True(t, tok.End < len(src), "token %v end out of range", tok)
		substr := src[tok.Start : tok.End+1]
		switch tok.Kind {
		case Builtin:
			assert.Equal(t, "@"+tok.Lexeme, substr, "builtin range must include leading @")
		case Identifier, Keyword, Number:
			assert.Equal(t, tok.Lexeme, substr)
		case String:
			assert.Equal(t, `"`+tok.Lexeme+`"`, substr)
		default:
			assert.Equal(t, tok.Lexeme, substr)
		}
	}
}
