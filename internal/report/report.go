// Package report renders Hana's three fatal diagnostic kinds
// (TokenizationError, ParseError, InternalError) the way the compiler's
// original implementation did: a colorized message, the offending source
// line, a caret underline aligned to the error column, and a hint.
//
// All three are fatal (see spec.md §7): the one-shot CLI commands
// (tokenize, parse, compile) print FullMessage() to stderr and exit 1 as
// soon as one is produced. `hana repl` prints it and reads the next buffer.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))  // red
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // yellow
	caretStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

const bugReportHint = "If this issue persists, please file a bug report."

// TokenizationError is raised by the tokenizer when it encounters a
// character it cannot classify, per spec.md §4.1 and §7.
type TokenizationError struct {
	Source  string
	Offset  int // byte offset of the offending character
	Message string
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("tokenization error: %s", e.Message)
}

// FullMessage renders the error message, offending source line, and a caret
// underline, matching spec.md §6's "red bold error message, the offending
// source line, a caret underline... and a yellow hint" format.
func (e *TokenizationError) FullMessage() string {
	excerpt := sourceLineWithCaret(e.Source, e.Offset)
	var b strings.Builder
	b.WriteString(errorStyle.Render(e.Message))
	b.WriteByte('\n')
	if excerpt != "" {
		b.WriteString(excerpt)
		b.WriteByte('\n')
	}
	b.WriteString(hintStyle.Render("Check that the character is valid and try again."))
	return b.String()
}

// ParseError is raised by the parser when a token stream does not match an
// expected structural form, per spec.md §4.2 and §7.
type ParseError struct {
	Source  string
	Offset  int // Token.Start of the offending token
	Lexeme  string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) FullMessage() string {
	excerpt := sourceLineWithCaret(e.Source, e.Offset)
	var b strings.Builder
	b.WriteString(errorStyle.Render(e.Message))
	b.WriteByte('\n')
	if excerpt != "" {
		b.WriteString(excerpt)
		b.WriteByte('\n')
	}
	b.WriteString(hintStyle.Render(fmt.Sprintf("Unexpected token %q.", e.Lexeme)))
	return b.String()
}

// InternalError is raised for back-end invariant violations: an unknown
// struct referenced by a buffer declaration, a raytracing stage used
// without `use hana::raytracing`, or an unrecognized tessellation/
// raytracing subtype (spec.md §4.4, §7).
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) FullMessage() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("The Hana compiler ran into an unexpected internal error:"))
	b.WriteByte('\n')
	b.WriteString(errorStyle.Render(e.Message))
	b.WriteByte('\n')
	b.WriteString(hintStyle.Render(bugReportHint))
	return b.String()
}

// sourceLineWithCaret extracts the line containing byte offset pos within
// source and renders it with a caret on the following line under the
// character at pos. Tabs count as 4 columns, per spec.md §6. Returns "" if
// pos is out of range for a meaningful excerpt.
func sourceLineWithCaret(source string, pos int) string {
	if pos < 0 || pos > len(source) {
		return ""
	}

	lineStart := strings.LastIndexByte(source[:pos], '\n') + 1
	lineEndRel := strings.IndexByte(source[pos:], '\n')
	var lineEnd int
	if lineEndRel < 0 {
		lineEnd = len(source)
	} else {
		lineEnd = pos + lineEndRel
	}

	line := source[lineStart:lineEnd]
	relBytes := pos - lineStart
	if relBytes < 0 {
		relBytes = 0
	}
	if relBytes > len(line) {
		relBytes = len(line)
	}

	prefixWidth := 0
	for _, r := range line[:relBytes] {
		if r == '\t' {
			prefixWidth += 4
		} else {
			prefixWidth++
		}
	}

	var b strings.Builder
	b.WriteString("│ ")
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString("│ ")
	b.WriteString(caretStyle.Render(strings.Repeat(" ", prefixWidth) + "^"))
	return b.String()
}
