package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maxvdec/hana/internal/cache"
	"github.com/maxvdec/hana/internal/codegen"
	"github.com/maxvdec/hana/internal/codegen/opengl"
	"github.com/maxvdec/hana/internal/config"
	"github.com/maxvdec/hana/internal/parser"
	"github.com/spf13/pflag"
)

// runCompile implements "hana compile FILE --for API [--cache]": compile
// the file to the named target API and print the generated source of every
// pipeline stage that produced output, in codegen.ConcreteStages order.
func runCompile(args []string) error {
	fs := pflag.NewFlagSet("compile", pflag.ContinueOnError)
	targetAPI := fs.String("for", "opengl", "Target API to compile for. Currently only \"opengl\" is supported.")
	useCache := fs.Bool("cache", false, "Reuse and populate the on-disk compile cache.")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: hana compile FILE --for API [--cache]")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(ExitUserError)
	}

	if *targetAPI != "opengl" {
		return fmt.Errorf("unsupported target API %q (only \"opengl\" is implemented)", *targetAPI)
	}

	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var store *cache.Store
	var key string
	if *useCache {
		store, err = cache.Open(filepath.Join(cfg.CacheDir, "hana.db"))
		if err != nil {
			return fmt.Errorf("open compile cache: %w", err)
		}
		defer store.Close()

		key = cache.Key(src, *targetAPI)
		if stages, err := store.Get(key); err == nil {
			printStages(stagesByName(stages))
			return nil
		}
	}

	nodes, err := parser.Parse(string(src))
	if err != nil {
		return err
	}

	stageOutputs, err := opengl.GenerateWithConfig(nodes, cfg)
	if err != nil {
		return err
	}

	if store != nil {
		stages := make(map[string]string, len(stageOutputs))
		for stage, text := range stageOutputs {
			stages[stage.String()] = text
		}
		if err := store.Put(key, stages); err != nil {
			return fmt.Errorf("write compile cache: %w", err)
		}
	}

	printStages(stageOutputs)
	return nil
}

func printStages(stageOutputs map[codegen.Stage]string) {
	for _, stage := range codegen.ConcreteStages {
		text, ok := stageOutputs[stage]
		if !ok {
			continue
		}
		fmt.Printf("// ---- %s ----\n", stage)
		fmt.Println(text)
	}
}

// stagesByName converts a cache hit's string-keyed stage map back into the
// codegen.Stage-keyed map printStages expects.
func stagesByName(stages map[string]string) map[codegen.Stage]string {
	out := make(map[codegen.Stage]string, len(stages))
	for _, stage := range codegen.ConcreteStages {
		if text, ok := stages[stage.String()]; ok {
			out[stage] = text
		}
	}
	return out
}
