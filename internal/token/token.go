// Package token defines the lexical tokens produced by the Hana tokenizer
// and the tokenizer itself.
package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	Number Kind = iota
	Identifier
	Keyword
	Builtin
	String
	Plus
	Minus
	Asterisk
	Slash
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Semicolon
	Colon
	Dot
	Bang
	LeftBracket
	RightBracket
	Equal
	LessThan
	GreaterThan
	And
	Or
	EOF
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case Identifier:
		return "Identifier"
	case Keyword:
		return "Keyword"
	case Builtin:
		return "Builtin"
	case String:
		return "String"
	case Plus:
		return "Plus"
	case Minus:
		return "Minus"
	case Asterisk:
		return "Asterisk"
	case Slash:
		return "Slash"
	case LeftParen:
		return "LeftParen"
	case RightParen:
		return "RightParen"
	case LeftBrace:
		return "LeftBrace"
	case RightBrace:
		return "RightBrace"
	case Comma:
		return "Comma"
	case Semicolon:
		return "Semicolon"
	case Colon:
		return "Colon"
	case Dot:
		return "Dot"
	case Bang:
		return "Bang"
	case LeftBracket:
		return "LeftBracket"
	case RightBracket:
		return "RightBracket"
	case Equal:
		return "Equal"
	case LessThan:
		return "LessThan"
	case GreaterThan:
		return "GreaterThan"
	case And:
		return "And"
	case Or:
		return "Or"
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single lexeme along with its source byte range. Start and End
// are inclusive byte offsets into the original source. Tokenize never
// produces a token of kind EOF.
type Token struct {
	Kind    Kind
	Lexeme  string
	Start   int
	End     int
	Line    int // 1-indexed line the token begins on
	LinePos int // 1-indexed byte column the token begins on
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Lexeme, t.Start, t.End)
}

var keywords = map[string]bool{
	"if":     true,
	"else":   true,
	"while":  true,
	"for":    true,
	"return": true,
	"func":   true,
	"const":  true,
	"struct": true,
	"use":    true,
}

func isKeyword(s string) bool {
	return keywords[s]
}
