package opengl

import (
	"fmt"
	"strings"

	"github.com/maxvdec/hana/internal/ast"
	"github.com/maxvdec/hana/internal/codegen"
)

func endsWithAny(s, set string) bool {
	if s == "" {
		return false
	}
	return strings.IndexByte(set, s[len(s)-1]) >= 0
}

func indentStr(depth int) string {
	return strings.Repeat("    ", depth)
}

func (b *Backend) findParam(params []ast.Param, targetType string) string {
	if targetType == "" {
		return ""
	}
	for _, p := range params {
		if p.Type == targetType {
			return p.Name
		}
	}
	return ""
}

// detectStructVariable finds the first `structName NAME` declaration inside
// a function body's raw token stream, used to locate the vertex stage's
// output-struct local variable (spec.md §4.4's vertex output wiring).
func (b *Backend) detectStructVariable(tokens []string, structName string) string {
	if structName == "" {
		return ""
	}
	for i := 0; i+2 < len(tokens); i++ {
		if tokens[i] == structName && (tokens[i+2] == ";" || tokens[i+2] == "=") {
			return tokens[i+1]
		}
	}
	return ""
}

func (b *Backend) mapFieldAccess(stage codegen.Stage, ctx bodyContext, base, field string) (string, bool) {
	switch stage {
	case codegen.Vertex:
		if ctx.InputParam != "" && ctx.InputParam == base {
			if v, ok := b.vertexInputMap[field]; ok {
				return v, true
			}
		}
		if ctx.OutputVar != "" && ctx.OutputVar == base {
			if v, ok := b.vertexOutputMap[field]; ok {
				return v, true
			}
		}
	case codegen.Fragment:
		if ctx.InputParam != "" && ctx.InputParam == base {
			if v, ok := b.fragmentInputMap[field]; ok {
				return v, true
			}
		}
	}
	return "", false
}

// stageVariableTables mirrors original_source/hana/src/opengl.rs's
// map_stage_variable match, stage by stage. Every concrete stage's table is
// listed here even where several stages share entries (raytracing), since
// that is how the original lays it out.
var stageVariableTables = map[codegen.Stage]map[string]string{
	codegen.Vertex: {
		"@position":   "gl_Position",
		"@pointSize":  "gl_PointSize",
		"@instanceId": "gl_InstanceID",
		"@vertexId":   "gl_VertexID",
		"@drawId":     "gl_DrawID",
	},
	codegen.Fragment: {
		"@fragCoordinates":  "gl_FragCoord",
		"@frontFacing":      "gl_FrontFacing",
		"@pointCoordinates": "gl_PointCoord",
		"@sampleId":         "gl_SampleID",
		"@samplePosition":   "gl_SamplePosition",
		"@sampleMask":       "gl_SampleMask",
		"@sampleMaskIn":     "gl_SampleMaskIn",
		"@fragDepth":        "gl_FragDepth",
		"@primitiveId":      "gl_PrimitiveID",
	},
	codegen.Compute: {
		"@localInvocationId":    "gl_LocalInvocationID",
		"@globalInvocationId":   "gl_GlobalInvocationID",
		"@workgroupId":          "gl_WorkGroupID",
		"@numWorkgroups":        "gl_NumWorkGroups",
		"@localInvocationIndex": "gl_LocalInvocationIndex",
	},
	codegen.TessellationControl: {
		"@invocationId":   "gl_InvocationID",
		"@in":             "gl_in",
		"@out":            "gl_out",
		"@tessLevelOuter": "gl_TessLevelOuter",
		"@tessLevelInner": "gl_TessLevelInner",
		"@primitiveId":    "gl_PrimitiveID",
	},
	codegen.TessellationEvaluation: {
		"@tessCoord":   "gl_TessCoord",
		"@in":          "gl_in",
		"@primitiveId": "gl_PrimitiveID",
		"@position":    "gl_Position",
	},
	codegen.Geometry: {
		"@in":            "gl_in",
		"@emitVertex":    "EmitVertex",
		"@endPrimitive":  "EndPrimitive",
		"@primitiveIdIn": "gl_PrimitiveIDIn",
		"@primitiveId":   "gl_PrimitiveID",
		"@layer":         "gl_Layer",
		"@viewportIndex": "gl_ViewportIndex",
	},
	codegen.Mesh: {
		"@meshVertices":      "gl_MeshVerticesNV",
		"@meshPrimitives":    "gl_MeshPrimitivesNV",
		"@taskCount":         "gl_TaskCountNV",
		"@workgroupId":       "gl_WorkGroupID",
		"@localInvocationId": "gl_LocalInvocationID",
	},
	codegen.Task: {
		"@taskCount":         "gl_TaskCountNV",
		"@workgroupId":       "gl_WorkGroupID",
		"@localInvocationId": "gl_LocalInvocationID",
	},
}

// raytracingVariableTable is shared by all six raytracing stages, matching
// the original's single match arm covering
// Generation|Closest|Any|Miss|Intersection|Callable.
var raytracingVariableTable = map[string]string{
	"@rayOrigin":    "gl_WorldRayOriginNV",
	"@rayDirection": "gl_WorldRayDirectionNV",
	"@hitT":         "gl_HitTNV",
	"@launchId":     "gl_LaunchIDNV",
	"@launchSize":   "gl_LaunchSizeNV",
	"@primitiveId":  "gl_PrimitiveID",
	"@instanceId":   "gl_InstanceID",
	"@geometryId":   "gl_GeometryIndexEXT",
	"@hitKind":      "gl_HitKindNV",
	"@missIndex":    "gl_MissIndexNV",
}

func init() {
	for _, stage := range []codegen.Stage{
		codegen.RaytracingGeneration,
		codegen.RaytracingClosest,
		codegen.RaytracingAny,
		codegen.RaytracingMiss,
		codegen.RaytracingIntersection,
		codegen.RaytracingCallable,
	} {
		stageVariableTables[stage] = raytracingVariableTable
	}
}

// mapStageVariable maps a `@name` stage variable to its GLSL built-in, per
// stage. Any symbol not in a stage's table passes through untouched.
func mapStageVariable(stage codegen.Stage, symbol string) (string, bool) {
	table, ok := stageVariableTables[stage]
	if !ok {
		return "", false
	}
	mapped, ok := table[symbol]
	return mapped, ok
}

func joinTokens(tokens []string) string {
	var out strings.Builder
	for _, tok := range tokens {
		switch tok {
		case ",", ".", "(", ")", "[", "]":
			out.WriteString(tok)
		default:
			if s := out.String(); s != "" && !endsWithAny(s, " \n(,[") {
				out.WriteByte(' ')
			}
			out.WriteString(tok)
		}
	}
	return out.String()
}

// tryTransformOptionalExpression lowers Hana's `thing.field[index] or
// fallback` optional-light-array access into a GLSL ternary guarded by a
// `<thing>.lightCount` bound check, per spec.md §4.4. It returns the
// rendered expression, the index of the first token past the fallback, and
// whether the pattern matched at start.
func (b *Backend) tryTransformOptionalExpression(tokens []string, start int) (string, int, bool) {
	if start+3 >= len(tokens) || tokens[start+1] != "." || tokens[start+3] != "[" {
		return "", 0, false
	}
	fieldToken := tokens[start+2]

	indexEnd := start + 4
	var indexTokens []string
	for indexEnd < len(tokens) && tokens[indexEnd] != "]" {
		indexTokens = append(indexTokens, tokens[indexEnd])
		indexEnd++
	}
	if indexEnd >= len(tokens) {
		return "", 0, false
	}

	orIndex := indexEnd + 1
	if orIndex >= len(tokens) || tokens[orIndex] != "or" {
		return "", 0, false
	}

	var fallbackTokens []string
	cursor := orIndex + 1
	parenBalance := 0
	for cursor < len(tokens) {
		tok := tokens[cursor]
		if (tok == ";" || tok == ",") && parenBalance == 0 {
			break
		}
		if tok == "(" {
			parenBalance++
		} else if tok == ")" {
			if parenBalance == 0 {
				break
			}
			parenBalance--
		}
		fallbackTokens = append(fallbackTokens, tok)
		cursor++
	}
	if len(fallbackTokens) == 0 {
		return "", 0, false
	}

	indexExpr := joinTokens(indexTokens)
	fallbackExpr := joinTokens(fallbackTokens)
	base := tokens[start]
	valueExpr := fmt.Sprintf("%s.%s[%s]", base, fieldToken, indexExpr)
	guard := fmt.Sprintf("%s < %s.lightCount", indexExpr, base)
	return fmt.Sprintf("(%s ? %s : %s)", guard, valueExpr, fallbackExpr), cursor, true
}

func (b *Backend) formatFunctionArgs(params []ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = mapType(p.Type) + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

var operatorTokens = map[string]bool{
	"=": true, "+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// formatFunctionBody walks a function's raw body lexemes and renders
// indented GLSL statement text, rewriting stage variables, field accesses,
// `.sample(...)` texture calls, and optional-light expressions along the
// way (spec.md §4.4).
func (b *Backend) formatFunctionBody(tokens []string, stage codegen.Stage, ctx bodyContext) string {
	var out strings.Builder
	indent := 1
	lineStart := true

	emitPrefix := func() {
		s := out.String()
		if lineStart {
			out.WriteString(indentStr(indent))
			lineStart = false
		} else if !endsWithAny(s, " \n(") {
			out.WriteByte(' ')
		}
	}

	i := 0
	for i < len(tokens) {
		if transformed, next, ok := b.tryTransformOptionalExpression(tokens, i); ok {
			emitPrefix()
			out.WriteString(transformed)
			i = next
			continue
		}

		if mapped, ok := mapStageVariable(stage, tokens[i]); ok {
			emitPrefix()
			out.WriteString(mapped)
			i++
			continue
		}

		if i+3 < len(tokens) && tokens[i+1] == "." && tokens[i+2] == "sample" && tokens[i+3] == "(" {
			emitPrefix()
			fmt.Fprintf(&out, "texture(%s, ", tokens[i])
			i += 4
			continue
		}

		if i+2 < len(tokens) && tokens[i+1] == "." {
			if mapped, ok := b.mapFieldAccess(stage, ctx, tokens[i], tokens[i+2]); ok {
				emitPrefix()
				out.WriteString(mapped)
				i += 3
				continue
			}
		}

		tok := tokens[i]
		switch {
		case tok == "{":
			if lineStart {
				out.WriteString(indentStr(indent))
			}
			out.WriteString("{\n")
			indent++
			lineStart = true
			i++
		case tok == "}":
			if indent > 0 {
				indent--
			}
			if !lineStart {
				out.WriteString("\n")
			}
			out.WriteString(indentStr(indent))
			out.WriteString("}\n")
			lineStart = true
			i++
		case tok == ";":
			out.WriteString(";\n")
			lineStart = true
			i++
		case tok == ",":
			out.WriteString(", ")
			lineStart = false
			i++
		case tok == "(" || tok == ")" || tok == "[" || tok == "]":
			out.WriteString(tok)
			lineStart = false
			i++
		case operatorTokens[tok]:
			s := out.String()
			if lineStart {
				out.WriteString(indentStr(indent))
				lineStart = false
			} else if !strings.HasSuffix(s, " ") {
				out.WriteByte(' ')
			}
			out.WriteString(tok)
			out.WriteByte(' ')
			i++
		default:
			emitPrefix()
			out.WriteString(tok)
			i++
		}
	}

	if !strings.HasSuffix(out.String(), "\n") {
		out.WriteString("\n")
	}
	return out.String()
}

func (b *Backend) buildStageShader(stage codegen.Stage, fn ast.Function) string {
	var sections []string

	version := b.versionDirective
	if version == "" {
		defaultVersion := b.cfg.DefaultVersion
		if defaultVersion == "" {
			defaultVersion = "410"
		}
		version = fmt.Sprintf("#version %s core", defaultVersion)
	}
	sections = append(sections, version)

	if len(b.globalStructDecls) > 0 {
		sections = append(sections, strings.Join(b.globalStructDecls, "\n"))
	}
	if len(b.uniformDecls) > 0 {
		sections = append(sections, strings.Join(b.uniformDecls, "\n"))
	}

	switch stage {
	case codegen.Vertex:
		if len(b.vertexInputDecls) > 0 {
			sections = append(sections, strings.Join(b.vertexInputDecls, "\n"))
		}
		if len(b.vertexOutputDecls) > 0 {
			sections = append(sections, strings.Join(b.vertexOutputDecls, "\n"))
		}
	case codegen.Fragment:
		if len(b.fragmentInputDecls) > 0 {
			sections = append(sections, strings.Join(b.fragmentInputDecls, "\n"))
		}
		if len(b.fragmentOutputDecls) > 0 {
			sections = append(sections, strings.Join(b.fragmentOutputDecls, "\n"))
		}
	}

	if len(b.globalDecls) > 0 {
		sections = append(sections, strings.Join(b.globalDecls, "\n"))
	}
	if len(b.helperFunctions) > 0 {
		sections = append(sections, strings.Join(b.helperFunctions, "\n"))
	}

	var inputParam, outputVar string
	switch stage {
	case codegen.Vertex:
		inputParam = b.findParam(fn.Params, b.vertexInputStruct)
		outputVar = b.detectStructVariable(fn.Body.Tokens, b.vertexOutputStruct)
	case codegen.Fragment:
		inputParam = b.findParam(fn.Params, b.fragmentInputStruct)
	}

	ctx := bodyContext{InputParam: inputParam, OutputVar: outputVar}
	body := b.formatFunctionBody(fn.Body.Tokens, stage, ctx)

	source := strings.Join(sections, "\n\n")
	if source != "" {
		source += "\n\n"
	}
	source += "void main() {\n"
	source += body
	source += "}\n"
	return source
}

func (b *Backend) buildHelperFunction(fn ast.Function) string {
	signature := fmt.Sprintf("%s %s(%s)", mapType(fn.ReturnType), fn.Name, b.formatFunctionArgs(fn.Params))
	body := b.formatFunctionBody(fn.Body.Tokens, codegen.All, bodyContext{})
	return signature + " {\n" + body + "}\n"
}
