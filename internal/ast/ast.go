// Package ast defines the top-level node variants produced by the Hana
// parser: Use, Builtin, Function, and Translatable (spec.md §3).
package ast

import "github.com/maxvdec/hana/internal/token"

// Node is implemented by every top-level AST node variant. It exists only
// to give the variant set a common type for the ordered node sequence the
// parser produces and the codegen driver walks; dispatch on the concrete
// type is done with a type switch (spec.md §9's "tagged variant" choice for
// a re-architecture away from the runtime-downcasting original).
type Node interface {
	node()
}

// Use imports a capability namespace, e.g. `use hana::raytracing;`.
type Use struct {
	ModulePath string
}

func (Use) node() {}

// Builtin is a `@name(...)` annotation. It either decorates the next
// declaration (a "decorator", consumed by the back end when it next parses
// a struct or global) or switches the current pipeline stage (a "stage
// switch", consumed immediately by the codegen driver). Args is empty and
// HasParens is false for a builtin with no parenthesized argument list.
type Builtin struct {
	Name      string
	Args      []token.Token
	HasParens bool
}

func (Builtin) node() {}

// Param is one `TYPE NAME` entry in a Function's parameter list.
type Param struct {
	Type string
	Name string
}

// Translatable is an opaque run of source-level lexemes collected between
// structured nodes. The back end lazily parses substructure (struct
// declarations, global variables) out of it; see spec.md §4.4 and §9.
type Translatable struct {
	Tokens []string
}

func (Translatable) node() {}

// Function is a `func NAME(...) -> RET { ... }` declaration. Body holds the
// raw lexeme stream between the matching braces, exactly as captured by the
// parser (no nested-brace counting — see spec.md §9 Open Question (a)).
type Function struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       Translatable
}

func (Function) node() {}
