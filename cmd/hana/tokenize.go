package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dekarrin/rosed"
	"github.com/maxvdec/hana/internal/token"
	"github.com/spf13/pflag"
)

// runTokenize implements "hana tokenize FILE": tokenize the file and print
// the resulting stream as a table, one row per token.
func runTokenize(args []string) error {
	fs := pflag.NewFlagSet("tokenize", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: hana tokenize FILE")
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

	toks, err := token.New(string(src)).Tokenize()
	if err != nil {
		return err
	}

	data := [][]string{{"KIND", "LEXEME", "LINE", "COL"}}
	for _, tok := range toks {
		data = append(data, []string{
			tok.Kind.String(),
			tok.Lexeme,
			strconv.Itoa(tok.Line),
			strconv.Itoa(tok.LinePos),
		})
	}

	table := rosed.Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
	fmt.Println(table)
	return nil
}
