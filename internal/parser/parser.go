// Package parser turns Hana source into an ordered sequence of top-level
// ast.Node values. It recognizes `use`, `func`, and `@builtin` structurally
// and accumulates everything else into Translatable runs of raw lexemes,
// per spec.md §4.2 and §9 ("Body lexeme stream vs real AST").
package parser

import (
	"fmt"

	"github.com/maxvdec/hana/internal/ast"
	"github.com/maxvdec/hana/internal/report"
	"github.com/maxvdec/hana/internal/token"
)

// Parser walks a token stream once with a cursor, flushing any pending raw
// lexemes into a Translatable node the moment it recognizes a structural
// construct.
type Parser struct {
	source  string
	tokens  []token.Token
	current int
	lastErr error
}

// New tokenizes source and returns a Parser ready to walk it.
func New(source string) (*Parser, error) {
	toks, err := token.New(source).Tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{source: source, tokens: toks}, nil
}

// Parse tokenizes and parses source in one call, returning the ordered
// top-level AST node sequence.
func Parse(source string) ([]ast.Node, error) {
	p, err := New(source)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

func (p *Parser) advance() (token.Token, bool) {
	if p.current < len(p.tokens) {
		tok := p.tokens[p.current]
		p.current++
		return tok, true
	}
	return token.Token{}, false
}

func (p *Parser) peek() (token.Token, bool) {
	if p.current < len(p.tokens) {
		return p.tokens[p.current], true
	}
	return token.Token{}, false
}

func (p *Parser) parseErrorf(tok token.Token, format string, a ...interface{}) error {
	return &report.ParseError{
		Source:  p.source,
		Offset:  tok.Start,
		Lexeme:  tok.Lexeme,
		Message: fmt.Sprintf(format, a...),
	}
}

// Parse walks the whole token stream and returns the ordered top-level node
// sequence (spec.md §4.2).
func (p *Parser) Parse() ([]ast.Node, error) {
	var nodes []ast.Node
	var pending []string

	flush := func() {
		if len(pending) > 0 {
			nodes = append(nodes, ast.Translatable{Tokens: pending})
			pending = nil
		}
	}

	for {
		tok, ok := p.advance()
		if !ok {
			break
		}

		switch {
		case tok.Kind == token.Keyword && tok.Lexeme == "use":
			flush()
			node, err := p.parseUse()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)

		case tok.Kind == token.Keyword && tok.Lexeme == "func":
			flush()
			node, err := p.parseFunction(tok)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)

		case tok.Kind == token.Builtin:
			flush()
			node := p.parseBuiltin(tok)
			nodes = append(nodes, node)

		default:
			pending = append(pending, bodyLexeme(tok))
		}
	}

	flush()
	return nodes, nil
}

// bodyLexeme returns the raw text a token contributes to a Translatable
// token stream. Builtin tokens are stored without their leading '@' (the
// lexer strips it, see token.lexBuiltin), so it must be re-added here for
// `@position`-style stage-local symbols to round-trip correctly.
func bodyLexeme(tok token.Token) string {
	if tok.Kind == token.Builtin {
		return "@" + tok.Lexeme
	}
	return tok.Lexeme
}

// parseUse parses `<dotted-path> ;` after the `use` keyword has already
// been consumed. The module path is the concatenation of intervening
// lexemes up to the semicolon (spec.md §4.2) — no spaces are inserted, so
// `hana :: raytracing` and `hana::raytracing` parse identically.
func (p *Parser) parseUse() (ast.Node, error) {
	var path string
	for {
		tok, ok := p.advance()
		if !ok {
			return nil, p.unexpectedEOF("expected ';' to close use statement")
		}
		if tok.Kind == token.Semicolon {
			break
		}
		path += tok.Lexeme
	}
	return ast.Use{ModulePath: path}, nil
}

// parseBuiltin parses a `@name` or `@name(arg, arg, ...)` annotation. name
// is the Builtin token already consumed. A builtin with no parenthesized
// argument list has empty Args and does not consume anything further,
// including a following semicolon (spec.md §4.2).
func (p *Parser) parseBuiltin(name token.Token) ast.Node {
	next, ok := p.peek()
	if !ok || next.Kind != token.LeftParen {
		return ast.Builtin{Name: name.Lexeme}
	}

	p.advance() // consume '('
	var args []token.Token
	for {
		tok, ok := p.advance()
		if !ok || tok.Kind == token.Semicolon {
			break
		}
		if tok.Kind == token.Comma {
			continue
		}
		if tok.Kind == token.RightParen {
			break
		}
		args = append(args, tok)
	}

	return ast.Builtin{Name: name.Lexeme, Args: args, HasParens: true}
}

// parseFunction parses `NAME ( [TYPE NAME (, TYPE NAME)*] ) -> RET { ... }`
// after the `func` keyword (funcTok) has already been consumed.
func (p *Parser) parseFunction(funcTok token.Token) (ast.Node, error) {
	nameTok, ok := p.advance()
	if !ok {
		return nil, p.unexpectedEOF("expected function name")
	}

	if _, ok := p.expect(token.LeftParen, "expected '(' after function name"); !ok {
		return nil, p.lastErr
	}

	var params []ast.Param
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.unexpectedEOF("expected ')' to close parameter list")
		}
		if tok.Kind == token.RightParen {
			p.advance()
			break
		}
		if len(params) > 0 {
			if _, ok := p.expect(token.Comma, "expected ',' between parameters"); !ok {
				return nil, p.lastErr
			}
		}

		typeTok, ok := p.advance()
		if !ok {
			return nil, p.unexpectedEOF("expected parameter type")
		}
		paramName, ok := p.advance()
		if !ok {
			return nil, p.unexpectedEOF("expected parameter name")
		}
		params = append(params, ast.Param{Type: typeTok.Lexeme, Name: paramName.Lexeme})
	}

	arrowTok, ok := p.peek()
	if !ok {
		return nil, p.unexpectedEOF("expected '->' after parameter list")
	}
	if arrowTok.Kind != token.Minus {
		return nil, p.parseErrorf(arrowTok, "expected '->' after parameter list")
	}
	p.advance() // '-'
	if _, ok := p.expect(token.GreaterThan, "expected '->' after parameter list"); !ok {
		return nil, p.lastErr
	}

	returnType := "void"
	if next, ok := p.peek(); ok && next.Kind != token.LeftBrace {
		p.advance()
		returnType = next.Lexeme
	}

	if _, ok := p.expect(token.LeftBrace, "expected '{' to begin function body"); !ok {
		return nil, p.lastErr
	}

	var body []string
	for {
		tok, ok := p.advance()
		if !ok {
			return nil, p.unexpectedEOF("expected '}' to close function body")
		}
		if tok.Kind == token.RightBrace {
			break
		}
		body = append(body, bodyLexeme(tok))
	}

	return ast.Function{
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Body:       ast.Translatable{Tokens: body},
	}, nil
}

// expect advances past the next token if it has the given kind, and
// otherwise records a ParseError (retrievable via p.lastErr) and returns
// false. It exists only to keep parseFunction's bookkeeping short.
func (p *Parser) expect(kind token.Kind, message string) (token.Token, bool) {
	tok, ok := p.advance()
	if !ok {
		p.lastErr = p.unexpectedEOF(message)
		return token.Token{}, false
	}
	if tok.Kind != kind {
		p.lastErr = p.parseErrorf(tok, "%s", message)
		return token.Token{}, false
	}
	return tok, true
}

func (p *Parser) unexpectedEOF(message string) error {
	offset := len(p.source)
	return &report.ParseError{
		Source:  p.source,
		Offset:  offset,
		Lexeme:  "",
		Message: message,
	}
}
