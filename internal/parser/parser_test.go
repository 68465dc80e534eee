package parser

import (
	"testing"

	"github.com/maxvdec/hana/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Use(t *testing.T) {
	nodes, err := Parse("use hana::raytracing;")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	use, ok := nodes[0].(ast.Use)
	require.True(t, ok)
	assert.Equal(t, "hana::raytracing", use.ModulePath)
}

func TestParse_BuiltinWithoutParens(t *testing.T) {
	nodes, err := Parse("@vertex func main() -> void { }")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	b, ok := nodes[0].(ast.Builtin)
	require.True(t, ok)
	assert.Equal(t, "vertex", b.Name)
	assert.Empty(t, b.Args)
	assert.False(t, b.HasParens)
}

func TestParse_BuiltinWithParens(t *testing.T) {
	nodes, err := Parse("@uniform(set=0, binding=1) Texture2D albedo;")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	b, ok := nodes[0].(ast.Builtin)
	require.True(t, ok)
	assert.Equal(t, "uniform", b.Name)
	assert.True(t, b.HasParens)
	var lexemes []string
	for _, a := range b.Args {
		lexemes = append(lexemes, a.Lexeme)
	}
	assert.Equal(t, []string{"set", "=", "0", "binding", "=", "1"}, lexemes)

	tr, ok := nodes[1].(ast.Translatable)
	require.True(t, ok)
	assert.Equal(t, []string{"Texture2D", "albedo", ";"}, tr.Tokens)
}

func TestParse_FunctionWithParamsAndReturnType(t *testing.T) {
	nodes, err := Parse("func add(float a, float b) -> float { return a + b ; }")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	fn, ok := nodes[0].(ast.Function)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "float", fn.ReturnType)
	assert.Equal(t, []ast.Param{{Type: "float", Name: "a"}, {Type: "float", Name: "b"}}, fn.Params)
	assert.Equal(t, []string{"return", "a", "+", "b", ";"}, fn.Body.Tokens)
}

func TestParse_FunctionDefaultsReturnTypeToVoid(t *testing.T) {
	nodes, err := Parse("func main() -> { x = 1 ; }")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	fn, ok := nodes[0].(ast.Function)
	require.True(t, ok)
	assert.Equal(t, "void", fn.ReturnType)
}

func TestParse_FunctionMissingArrowFails(t *testing.T) {
	_, err := Parse("func main() void { }")
	require.Error(t, err)
}

func TestParse_FlushInvariant(t *testing.T) {
	// Raw lexemes before and after a structural node must appear as exactly
	// one Translatable node each, never split or merged across the
	// structural boundary (spec.md §8).
	nodes, err := Parse("struct VIn { vec3 position ; } @vertex func main() -> void { }")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	_, ok := nodes[0].(ast.Translatable)
	require.True(t, ok)
	_, ok = nodes[1].(ast.Builtin)
	require.True(t, ok)
	_, ok = nodes[2].(ast.Function)
	require.True(t, ok)
}

func TestParse_UnbalancedBracesTerminateBodyEarly(t *testing.T) {
	// Documented Open Question (a): the parser does not count nested
	// braces, so a nested block ends the function body at its own '}'.
	nodes, err := Parse("func main() -> void { if ( x ) { y = 1 ; } z = 2 ; }")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	fn, ok := nodes[0].(ast.Function)
	require.True(t, ok)
	assert.Equal(t, []string{"if", "(", "x", ")", "{", "y", "=", "1", ";"}, fn.Body.Tokens)
	tr, ok := nodes[1].(ast.Translatable)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "=", "2", ";", "}"}, tr.Tokens)
}
