package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/maxvdec/hana/internal/ast"
	"github.com/maxvdec/hana/internal/parser"
	"github.com/spf13/pflag"
)

// runParse implements "hana parse FILE": parse the file and print its
// top-level AST node sequence, one line per node.
func runParse(args []string) error {
	fs := pflag.NewFlagSet("parse", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: hana parse FILE")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(ExitUserError)
	}

	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	nodes, err := parser.Parse(string(src))
	if err != nil {
		return err
	}

	for i, node := range nodes {
		fmt.Printf("%3d: %s\n", i, describeNode(node))
	}
	return nil
}

func describeNode(node ast.Node) string {
	switch n := node.(type) {
	case ast.Use:
		return fmt.Sprintf("Use{ModulePath: %q}", n.ModulePath)
	case ast.Builtin:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.Lexeme
		}
		return fmt.Sprintf("Builtin{Name: %q, Args: [%s], HasParens: %t}", n.Name, strings.Join(args, ", "), n.HasParens)
	case ast.Function:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
		}
		return fmt.Sprintf("Function{Name: %q, Params: [%s], ReturnType: %q, BodyTokens: %d}",
			n.Name, strings.Join(params, ", "), n.ReturnType, len(n.Body.Tokens))
	case ast.Translatable:
		return fmt.Sprintf("Translatable{Tokens: %d}", len(n.Tokens))
	default:
		return fmt.Sprintf("%#v", n)
	}
}
