package codegen

import "github.com/maxvdec/hana/internal/ast"

// Backend is the interface the codegen driver dispatches to. A second back
// end (e.g. SPIR-V) can be slotted in unchanged — the driver itself knows
// nothing about GLSL (spec.md §4.3).
type Backend interface {
	RunTranslatable(node ast.Translatable) string
	RunBuiltin(node ast.Builtin) (text string, stage Stage)
	RunUse(node ast.Use) string
	RunFunction(node ast.Function) string
	// Finalize is called once after every node has been dispatched. It
	// returns the final per-stage output, in which it may overwrite or clear
	// any stage's accumulated text; Compile returns that map.
	Finalize(outputs map[Stage]string) map[Stage]string
}

// Compile walks nodes in order, dispatching each to backend and tracking a
// current-stage cursor that stage-tagging builtins may move, then calls
// backend.Finalize to materialize the final per-stage shader text
// (spec.md §4.3).
func Compile(nodes []ast.Node, backend Backend) map[Stage]string {
	outputs := make(map[Stage]string, len(ConcreteStages))
	for _, stage := range ConcreteStages {
		outputs[stage] = ""
	}

	currentStage := All

	for _, node := range nodes {
		var fragment string

		switch n := node.(type) {
		case ast.Translatable:
			fragment = backend.RunTranslatable(n)
		case ast.Builtin:
			var stage Stage
			fragment, stage = backend.RunBuiltin(n)
			if stage != Same {
				currentStage = stage
			}
		case ast.Use:
			fragment = backend.RunUse(n)
		case ast.Function:
			fragment = backend.RunFunction(n)
		}

		if currentStage == All {
			for _, stage := range ConcreteStages {
				outputs[stage] += fragment
			}
		} else {
			outputs[currentStage] += fragment
		}
	}

	return backend.Finalize(outputs)
}
