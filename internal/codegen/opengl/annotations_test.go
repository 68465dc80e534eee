package opengl

import (
	"testing"

	"github.com/maxvdec/hana/internal/codegen"
	"github.com/maxvdec/hana/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(lexeme string) token.Token {
	return token.Token{Kind: token.Identifier, Lexeme: lexeme}
}

func TestParseStageBuiltin_TessellationCollapsesToEvaluation(t *testing.T) {
	// Open Question (b): @stage(tessellation, ...) always maps to
	// TessellationEvaluation, discarding TessellationControl. Preserved
	// verbatim rather than "fixed" — see DESIGN.md.
	sa, ok := parseStageBuiltin([]token.Token{tok("tessellation"), tok("in")})
	require.True(t, ok)
	assert.Equal(t, codegen.TessellationEvaluation, sa.Stage)
	assert.Equal(t, stageIn, sa.IO)
}

func TestParseStageBuiltin_VertexAndFragmentMapDirectly(t *testing.T) {
	sa, ok := parseStageBuiltin([]token.Token{tok("vertex"), tok("out")})
	require.True(t, ok)
	assert.Equal(t, codegen.Vertex, sa.Stage)
	assert.Equal(t, stageOut, sa.IO)

	sa, ok = parseStageBuiltin([]token.Token{tok("fragment"), tok("in")})
	require.True(t, ok)
	assert.Equal(t, codegen.Fragment, sa.Stage)
	assert.Equal(t, stageIn, sa.IO)
}

func TestParseStageBuiltin_RequiresTwoArgs(t *testing.T) {
	_, ok := parseStageBuiltin([]token.Token{tok("vertex")})
	assert.False(t, ok)
}

func TestParseUniformLikeBuiltin_NamedArgs(t *testing.T) {
	ann := parseUniformLikeBuiltin([]token.Token{tok("set"), tok("="), tok("2"), tok("binding"), tok("="), tok("3")})
	require.NotNil(t, ann.Set)
	require.NotNil(t, ann.Binding)
	assert.Equal(t, 2, *ann.Set)
	assert.Equal(t, 3, *ann.Binding)
}

func TestParseUniformLikeBuiltin_PositionalArgs(t *testing.T) {
	ann := parseUniformLikeBuiltin([]token.Token{tok("0"), tok("1")})
	require.NotNil(t, ann.Set)
	require.NotNil(t, ann.Binding)
	assert.Equal(t, 0, *ann.Set)
	assert.Equal(t, 1, *ann.Binding)
}

func TestTakeFirst_RemovesOnlyOneMatchingEntry(t *testing.T) {
	b := New()
	b.pending = []pendingAnnotation{
		{kind: annPush},
		{kind: annAlign, align: "std140"},
		{kind: annPush},
	}
	_, ok := b.takeFirst(annPush)
	require.True(t, ok)
	require.Len(t, b.pending, 2)
	assert.Equal(t, annAlign, b.pending[0].kind)
	assert.Equal(t, annPush, b.pending[1].kind)
}
