package report_test

import (
	"strings"
	"testing"

	"github.com/maxvdec/hana/internal/report"
	"github.com/stretchr/testify/assert"
)

func TestTokenizationError_FullMessageIncludesSourceLineAndCaret(t *testing.T) {
	src := "@vertex func main() -> void { # }"
	offset := strings.IndexByte(src, '#')
	err := &report.TokenizationError{Source: src, Offset: offset, Message: "unexpected character '#'"}

	msg := err.FullMessage()
	assert.Contains(t, msg, "unexpected character '#'")
	assert.Contains(t, msg, src)
	assert.Contains(t, msg, "^")
	assert.Contains(t, msg, "Check that the character is valid and try again.")
}

func TestTokenizationError_ErrorIsPlainAndUncolored(t *testing.T) {
	err := &report.TokenizationError{Source: "x", Offset: 0, Message: "bad input"}
	assert.Equal(t, "tokenization error: bad input", err.Error())
}

func TestParseError_FullMessageIncludesLexemeHint(t *testing.T) {
	src := "func main( -> void { }"
	offset := strings.IndexByte(src, '-')
	err := &report.ParseError{Source: src, Offset: offset, Lexeme: "->", Message: "expected parameter or ')'"}

	msg := err.FullMessage()
	assert.Contains(t, msg, "expected parameter or ')'")
	assert.Contains(t, msg, `Unexpected token "->".`)
}

func TestParseError_Error(t *testing.T) {
	err := &report.ParseError{Message: "expected ';'"}
	assert.Equal(t, "parse error: expected ';'", err.Error())
}

func TestInternalError_FullMessageIncludesBugReportHint(t *testing.T) {
	err := &report.InternalError{Message: "unknown struct \"Foo\" referenced by buffer declaration"}
	msg := err.FullMessage()
	assert.Contains(t, msg, "unknown struct \"Foo\"")
	assert.Contains(t, msg, "If this issue persists, please file a bug report.")
}

func TestInternalError_Error(t *testing.T) {
	err := &report.InternalError{Message: "boom"}
	assert.Equal(t, "internal error: boom", err.Error())
}

func TestTokenizationError_CaretAccountsForTabWidth(t *testing.T) {
	src := "\tfoo #"
	offset := strings.IndexByte(src, '#')
	err := &report.TokenizationError{Source: src, Offset: offset, Message: "bad char"}

	msg := err.FullMessage()
	lines := strings.Split(msg, "\n")
	var caretLine string
	for _, l := range lines {
		if strings.Contains(l, "^") {
			caretLine = l
		}
	}
	assert.NotEmpty(t, caretLine)
	// A tab counts as 4 columns, so the caret must be indented past the 9
	// bytes of "│ " prefix + "\tfoo " that it would sit after if the tab
	// counted as one column.
	assert.Greater(t, strings.IndexByte(caretLine, '^'), len("│ \tfoo "))
}

func TestTokenizationError_OutOfRangeOffsetOmitsExcerpt(t *testing.T) {
	err := &report.TokenizationError{Source: "abc", Offset: 99, Message: "bad"}
	msg := err.FullMessage()
	assert.NotContains(t, msg, "│")
}
