package opengl

import (
	"strconv"

	"github.com/maxvdec/hana/internal/codegen"
	"github.com/maxvdec/hana/internal/token"
)

type annotationKind int

const (
	annUniform annotationKind = iota
	annOpenGLName
	annStage
	annPush
	annAlign
	annBuffer
	annOutput
	annTransform
	annHanaVersion
)

type uniformAnnotation struct {
	Set     *int
	Binding *int
}

type stageAnnotation struct {
	Stage codegen.Stage
	IO    stageIO
}

type bufferAnnotation struct {
	Binding *int
}

type outputAnnotation struct {
	Location int
}

type transformAnnotation struct {
	BlockName   string // empty means derive from the instance name
	MaxElements int
}

// pendingAnnotation is a tagged variant, mirroring ast.Node's single-field-
// populated shape: only the field matching kind is meaningful.
type pendingAnnotation struct {
	kind annotationKind

	uniform    uniformAnnotation
	openglName string
	stage      stageAnnotation
	align      string
	buffer     bufferAnnotation
	output     outputAnnotation
	transform  transformAnnotation
}

// takeFirst removes and returns the first pending annotation of kind, the
// way each @builtin is consumed by the declaration that follows it.
func (b *Backend) takeFirst(kind annotationKind) (pendingAnnotation, bool) {
	for i, ann := range b.pending {
		if ann.kind == kind {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return ann, true
		}
	}
	return pendingAnnotation{}, false
}

func (b *Backend) takeUniformAnnotation() (uniformAnnotation, bool) {
	ann, ok := b.takeFirst(annUniform)
	return ann.uniform, ok
}

func (b *Backend) takeOpenGLNameAnnotation() (string, bool) {
	ann, ok := b.takeFirst(annOpenGLName)
	return ann.openglName, ok
}

func (b *Backend) takeAlignAnnotation() (string, bool) {
	ann, ok := b.takeFirst(annAlign)
	return ann.align, ok
}

func (b *Backend) takeBufferAnnotation() (bufferAnnotation, bool) {
	ann, ok := b.takeFirst(annBuffer)
	return ann.buffer, ok
}

func (b *Backend) takeOutputAnnotation() (outputAnnotation, bool) {
	ann, ok := b.takeFirst(annOutput)
	return ann.output, ok
}

func (b *Backend) takeTransformAnnotation() (transformAnnotation, bool) {
	ann, ok := b.takeFirst(annTransform)
	return ann.transform, ok
}

func (b *Backend) takePushAnnotation() bool {
	_, ok := b.takeFirst(annPush)
	return ok
}

func (b *Backend) takeHanaVersionAnnotation() bool {
	_, ok := b.takeFirst(annHanaVersion)
	return ok
}

// takeStageAnnotations removes every pending @stage annotation at once — a
// single struct may be tagged for more than one stage slot.
func (b *Backend) takeStageAnnotations() []stageAnnotation {
	var out []stageAnnotation
	rest := b.pending[:0:0]
	for _, ann := range b.pending {
		if ann.kind == annStage {
			out = append(out, ann.stage)
		} else {
			rest = append(rest, ann)
		}
	}
	b.pending = rest
	return out
}

// parseUniformLikeBuiltin reads `set`/`binding` keyword args or two bare
// positional integers, matching @uniform(set=0, binding=1) and the
// comma-skipped token stream the parser hands to builtin arguments.
func parseUniformLikeBuiltin(args []token.Token) uniformAnnotation {
	var set, binding *int
	i := 0
	for i < len(args) {
		switch args[i].Lexeme {
		case "set":
			if i+2 < len(args) {
				if v, err := strconv.Atoi(args[i+2].Lexeme); err == nil {
					set = &v
				}
				i += 3
				continue
			}
		case "binding":
			if i+2 < len(args) {
				if v, err := strconv.Atoi(args[i+2].Lexeme); err == nil {
					binding = &v
				}
				i += 3
				continue
			}
		default:
			if v, err := strconv.Atoi(args[i].Lexeme); err == nil {
				if set == nil {
					set = &v
				} else if binding == nil {
					binding = &v
				}
			}
		}
		i++
	}
	return uniformAnnotation{Set: set, Binding: binding}
}

// parseBufferBuiltin shares @uniform's set/binding grammar; only Binding
// ends up meaningful for a buffer's layout qualifier.
func parseBufferBuiltin(args []token.Token) bufferAnnotation {
	u := parseUniformLikeBuiltin(args)
	return bufferAnnotation{Binding: u.Binding}
}

func parseOutputBuiltin(args []token.Token) outputAnnotation {
	location := 0
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0].Lexeme); err == nil {
			location = v
		}
	}
	return outputAnnotation{Location: location}
}

func parseTransformBuiltin(args []token.Token) transformAnnotation {
	blockName := ""
	for _, a := range args {
		if isIdentLexeme(a.Lexeme) {
			blockName = a.Lexeme
			break
		}
	}
	maxElements := 1
	for _, a := range args {
		if v, err := strconv.Atoi(a.Lexeme); err == nil {
			maxElements = v
			break
		}
	}
	return transformAnnotation{BlockName: blockName, MaxElements: maxElements}
}

func isIdentLexeme(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

// parseStageBuiltin parses @stage(kind, in|out). Open Question (b): a
// "tessellation" kind always maps to TessellationEvaluation, never
// TessellationControl — preserved as originally authored.
func parseStageBuiltin(args []token.Token) (stageAnnotation, bool) {
	if len(args) < 2 {
		return stageAnnotation{}, false
	}

	var stage codegen.Stage
	switch args[0].Lexeme {
	case "vertex":
		stage = codegen.Vertex
	case "fragment":
		stage = codegen.Fragment
	case "compute":
		stage = codegen.Compute
	case "geometry":
		stage = codegen.Geometry
	case "mesh":
		stage = codegen.Mesh
	case "task":
		stage = codegen.Task
	case "tessellation":
		stage = codegen.TessellationEvaluation
	case "raytracing":
		stage = codegen.RaytracingAny
	default:
		stage = codegen.All
	}

	io := stageIn
	if args[1].Lexeme == "out" {
		io = stageOut
	}

	return stageAnnotation{Stage: stage, IO: io}, true
}
