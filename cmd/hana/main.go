/*
Hana is the command-line front end for the Hana shading language compiler.

Usage:

	hana <command> [flags] [args]

The commands are:

	tokenize FILE
		Tokenize FILE and print the resulting token stream as a table.

	parse FILE
		Parse FILE and print its top-level AST node sequence.

	compile FILE --for API
		Compile FILE to the given target API (currently only "opengl") and
		print the generated source for every pipeline stage that has an
		entry function.

	repl
		Start an interactive read-compile-print loop over stdin.

	serve
		Start the compile-as-a-service HTTP API.

Run "hana <command> --help" for a command's flags.
*/
package main

import (
	"fmt"
	"os"

	"github.com/maxvdec/hana/internal/report"
	"github.com/maxvdec/hana/internal/version"
)

const (
	// ExitSuccess indicates the command completed without error.
	ExitSuccess = 0

	// ExitUserError indicates a problem with the input, arguments, or
	// environment rather than a compiler bug.
	ExitUserError = 1
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(ExitUserError)
	}

	cmd, args := os.Args[1], os.Args[2:]

	if cmd == "-v" || cmd == "--version" {
		fmt.Printf("hana %s\n", version.Current)
		return
	}

	var err error
	switch cmd {
	case "tokenize":
		err = runTokenize(args)
	case "parse":
		err = runParse(args)
	case "compile":
		err = runCompile(args)
	case "repl":
		err = runRepl(args)
	case "serve":
		err = runServe(args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "hana: unknown command %q\n", cmd)
		usage()
		os.Exit(ExitUserError)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, diagnosticText(err))
		os.Exit(ExitUserError)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hana <tokenize|parse|compile|repl|serve> [flags] [args]")
	fmt.Fprintln(os.Stderr, "Do \"hana <command> --help\" for a command's flags.")
}

// diagnosticText renders err the way spec.md §6 and §7 describe: one of
// report's three fatal kinds gets its full colorized rendering, anything
// else just gets its plain message.
func diagnosticText(err error) string {
	switch e := err.(type) {
	case *report.TokenizationError:
		return e.FullMessage()
	case *report.ParseError:
		return e.FullMessage()
	case *report.InternalError:
		return e.FullMessage()
	default:
		return fmt.Sprintf("hana: %s", err.Error())
	}
}
