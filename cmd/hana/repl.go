package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/maxvdec/hana/internal/codegen"
	"github.com/maxvdec/hana/internal/codegen/opengl"
	"github.com/maxvdec/hana/internal/parser"
	"github.com/spf13/pflag"
)

// runRepl implements "hana repl": an interactive loop that reads one source
// buffer at a time, terminated by a blank line, and compiles it to OpenGL
// GLSL, printing either the generated stage text or the diagnostic.
func runRepl(args []string) error {
	fs := pflag.NewFlagSet("repl", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "hana> "})
	if err != nil {
		return fmt.Errorf("start readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("Enter a Hana source buffer, terminated by a blank line. Ctrl-D to quit.")

	for {
		buf, err := readBuffer(rl)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(buf) == "" {
			continue
		}

		nodes, err := parser.Parse(buf)
		if err != nil {
			fmt.Println(diagnosticText(err))
			continue
		}

		stageOutputs, err := opengl.Generate(nodes)
		if err != nil {
			fmt.Println(diagnosticText(err))
			continue
		}

		if len(stageOutputs) == 0 {
			fmt.Println("(no stage-entry function found in buffer)")
			continue
		}

		for _, stage := range codegen.ConcreteStages {
			if text, ok := stageOutputs[stage]; ok {
				fmt.Printf("// ---- %s ----\n%s\n", stage, text)
			}
		}
	}
}

// readBuffer reads lines until a blank one is seen (or EOF), returning the
// accumulated buffer.
func readBuffer(rl *readline.Instance) (string, error) {
	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			if len(lines) > 0 {
				return strings.Join(lines, "\n"), nil
			}
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}
