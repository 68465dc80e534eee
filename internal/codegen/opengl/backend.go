// Package opengl is the OpenGL (GLSL) back end for the Hana codegen
// driver. It lowers the AST plus annotations into per-stage GLSL source,
// per spec.md §4.4.
package opengl

import (
	"github.com/charmbracelet/log"
	"github.com/maxvdec/hana/internal/ast"
	"github.com/maxvdec/hana/internal/codegen"
	"github.com/maxvdec/hana/internal/config"
	"github.com/maxvdec/hana/internal/report"
)

type stageIO int

const (
	stageIn stageIO = iota
	stageOut
)

type structField struct {
	Type        string
	Name        string
	ArraySuffix string // empty means no array suffix
}

type structInfo struct {
	Fields    []structField
	Alignment string // empty means unset
}

type bodyContext struct {
	InputParam string // empty means none
	OutputVar  string // empty means none
}

// Backend implements codegen.Backend, lowering Hana source into GLSL for
// every pipeline stage that has an entry function.
type Backend struct {
	includePaths []string

	pending []pendingAnnotation

	versionDirective string // empty means unset

	structs map[string]structInfo

	globalStructDecls []string
	globalDecls       []string

	uniformDecls    []string
	uniformDeclSeen map[string]bool

	vertexInputStruct string
	vertexInputDecls  []string
	vertexInputMap    map[string]string

	vertexOutputStruct string
	vertexOutputDecls  []string
	vertexOutputMap    map[string]string

	fragmentInputStruct string
	fragmentInputDecls  []string
	fragmentInputMap    map[string]string

	fragmentOutputDecls []string

	helperFunctions []string
	stageFunctions  map[codegen.Stage]ast.Function

	currentFunctionStage codegen.Stage

	cfg config.Config

	err error
}

// New returns a fresh Backend configured with config.Default(). Every
// compilation must use a new Backend — back-end state is scoped to exactly
// one compilation (spec.md §5, §9).
func New() *Backend {
	return NewWithConfig(config.Default())
}

// NewWithConfig returns a fresh Backend using cfg to resolve the fallback
// `#version` directive (when no `@hana` annotation appears at all) and the
// `use` extension allow-list (SPEC_FULL.md's config module).
func NewWithConfig(cfg config.Config) *Backend {
	return &Backend{
		structs:              make(map[string]structInfo),
		uniformDeclSeen:      make(map[string]bool),
		vertexInputMap:       make(map[string]string),
		vertexOutputMap:      make(map[string]string),
		fragmentInputMap:     make(map[string]string),
		stageFunctions:       make(map[codegen.Stage]ast.Function),
		currentFunctionStage: codegen.All,
		cfg:                  cfg,
	}
}

// Err returns the first InternalError the back end encountered, if any.
// Hana's error model is fatal-at-detection (spec.md §7): once set, further
// dispatch calls are no-ops as far as correctness is concerned, and the
// caller should stop and report Err() instead of trusting the output.
func (b *Backend) Err() error {
	return b.err
}

func (b *Backend) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Backend) hasInclude(path string) bool {
	for _, p := range b.includePaths {
		if p == path {
			return true
		}
	}
	return false
}

// Generate code-generates already-parsed nodes with a fresh Backend,
// returning the GLSL text for every concrete stage that has an entry
// function (stages with none are simply absent from the map, per spec.md
// §4.4's "finalize" behavior).
func Generate(nodes []ast.Node) (map[codegen.Stage]string, error) {
	return GenerateWithConfig(nodes, config.Default())
}

// GenerateWithConfig is Generate, but resolving the fallback `#version` and
// the `use` extension allow-list from cfg instead of config.Default().
func GenerateWithConfig(nodes []ast.Node, cfg config.Config) (map[codegen.Stage]string, error) {
	backend := NewWithConfig(cfg)
	outputs := codegen.Compile(nodes, backend)
	if backend.err != nil {
		return nil, backend.err
	}

	result := make(map[codegen.Stage]string, len(outputs))
	for stage, text := range outputs {
		if text != "" {
			result[stage] = text
		}
	}
	return result, nil
}

func (b *Backend) RunTranslatable(node ast.Translatable) string {
	if b.takeHanaVersionAnnotation() {
		b.versionDirective = resolveVersion(node.Tokens)
		return ""
	}

	tokens := node.Tokens
	index := 0
loop:
	for index < len(tokens) {
		switch tokens[index] {
		case "struct":
			consumed := b.parseStruct(tokens[index:])
			if consumed == 0 {
				break loop
			}
			index += consumed
		case ";", "}":
			index++
		default:
			consumed := b.parseGlobalDeclaration(tokens[index:])
			if consumed == 0 {
				break loop
			}
			index += consumed
		}
	}

	return ""
}

func (b *Backend) RunUse(node ast.Use) string {
	if !b.hasInclude(node.ModulePath) {
		b.includePaths = append(b.includePaths, node.ModulePath)
	}
	if !b.cfg.AllowsExtension(node.ModulePath) {
		log.Warn("use of unrecognized extension; accepted anyway, per spec", "module", node.ModulePath)
	}
	return ""
}

func (b *Backend) RunFunction(node ast.Function) string {
	switch b.currentFunctionStage {
	case codegen.All, codegen.Same:
		b.helperFunctions = append(b.helperFunctions, b.buildHelperFunction(node))
		return ""
	default:
		stage := b.currentFunctionStage
		b.stageFunctions[stage] = node
		b.currentFunctionStage = codegen.All
		return ""
	}
}

func (b *Backend) RunBuiltin(node ast.Builtin) (string, codegen.Stage) {
	switch node.Name {
	case "hana":
		b.pending = append(b.pending, pendingAnnotation{kind: annHanaVersion})
	case "uniform":
		b.pending = append(b.pending, pendingAnnotation{kind: annUniform, uniform: parseUniformLikeBuiltin(node.Args)})
	case "opengl":
		if len(node.Args) > 0 {
			b.pending = append(b.pending, pendingAnnotation{kind: annOpenGLName, openglName: node.Args[0].Lexeme})
		}
	case "stage":
		if sa, ok := parseStageBuiltin(node.Args); ok {
			b.pending = append(b.pending, pendingAnnotation{kind: annStage, stage: sa})
		}
	case "push":
		b.pending = append(b.pending, pendingAnnotation{kind: annPush})
	case "align":
		if len(node.Args) > 0 {
			b.pending = append(b.pending, pendingAnnotation{kind: annAlign, align: node.Args[0].Lexeme})
		}
	case "buffer":
		b.pending = append(b.pending, pendingAnnotation{kind: annBuffer, buffer: parseBufferBuiltin(node.Args)})
	case "openglTransformToUniform":
		b.pending = append(b.pending, pendingAnnotation{kind: annTransform, transform: parseTransformBuiltin(node.Args)})
	case "output":
		b.pending = append(b.pending, pendingAnnotation{kind: annOutput, output: parseOutputBuiltin(node.Args)})
	case "vertex":
		b.currentFunctionStage = codegen.Vertex
		return "", codegen.Vertex
	case "fragment":
		b.currentFunctionStage = codegen.Fragment
		return "", codegen.Fragment
	case "geometry":
		b.currentFunctionStage = codegen.Geometry
		return "", codegen.Geometry
	case "compute":
		b.currentFunctionStage = codegen.Compute
		return "", codegen.Compute
	case "mesh":
		b.currentFunctionStage = codegen.Mesh
		return "", codegen.Mesh
	case "task":
		b.currentFunctionStage = codegen.Task
		return "", codegen.Task
	case "tessellation":
		return b.runTessellationBuiltin(node)
	case "raytracing":
		return b.runRaytracingBuiltin(node)
	}

	return "", codegen.Same
}

func (b *Backend) runTessellationBuiltin(node ast.Builtin) (string, codegen.Stage) {
	if len(node.Args) == 0 {
		b.setErr(&report.InternalError{Message: "Tessellation builtin requires a shader type argument (control/evaluation)"})
		return "", codegen.Same
	}
	switch node.Args[0].Lexeme {
	case "control":
		b.currentFunctionStage = codegen.TessellationControl
		return "", codegen.TessellationControl
	case "evaluation":
		b.currentFunctionStage = codegen.TessellationEvaluation
		return "", codegen.TessellationEvaluation
	default:
		b.setErr(&report.InternalError{Message: "Tessellation builtin requires a shader type argument (control/evaluation)"})
		return "", codegen.Same
	}
}

func (b *Backend) runRaytracingBuiltin(node ast.Builtin) (string, codegen.Stage) {
	if !b.hasInclude("hana::raytracing") {
		b.setErr(&report.InternalError{Message: "Raytracing extension not included."})
		return "", codegen.Same
	}
	if len(node.Args) == 0 {
		return "", codegen.Same
	}

	var stage codegen.Stage
	switch node.Args[0].Lexeme {
	case "generation":
		stage = codegen.RaytracingGeneration
	case "closest":
		stage = codegen.RaytracingClosest
	case "any":
		stage = codegen.RaytracingAny
	case "miss":
		stage = codegen.RaytracingMiss
	case "intersection":
		stage = codegen.RaytracingIntersection
	case "callable":
		stage = codegen.RaytracingCallable
	default:
		b.setErr(&report.InternalError{Message: "Raytracing builtin requires a valid shader type argument (generation/closest/any/miss/intersection/callable)"})
		return "", codegen.Same
	}

	b.currentFunctionStage = stage
	return "", stage
}

func (b *Backend) Finalize(outputs map[codegen.Stage]string) map[codegen.Stage]string {
	result := make(map[codegen.Stage]string, len(outputs))
	for stage := range outputs {
		result[stage] = ""
	}
	for stage, fn := range b.stageFunctions {
		result[stage] = b.buildStageShader(stage, fn)
	}
	return result
}
