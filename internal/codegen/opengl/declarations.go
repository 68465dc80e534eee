package opengl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maxvdec/hana/internal/codegen"
	"github.com/maxvdec/hana/internal/report"
)

func mapType(t string) string {
	switch t {
	case "Texture", "Texture2D":
		return "sampler2D"
	case "TextureCube":
		return "samplerCube"
	case "Texture3D":
		return "sampler3D"
	case "Color":
		return "vec4"
	default:
		return t
	}
}

func isScalarType(t string) bool {
	switch t {
	case "int", "uint", "float", "double", "bool":
		return true
	default:
		return false
	}
}

func (b *Backend) pushUniformDecl(decl string) {
	if b.uniformDeclSeen[decl] {
		return
	}
	b.uniformDeclSeen[decl] = true
	b.uniformDecls = append(b.uniformDecls, decl)
}

func formatStructDefinition(name string, info structInfo) string {
	var out strings.Builder
	fmt.Fprintf(&out, "struct %s {\n", name)
	for _, f := range info.Fields {
		fmt.Fprintf(&out, "    %s %s%s;\n", mapType(f.Type), f.Name, f.ArraySuffix)
	}
	out.WriteString("};")
	return out.String()
}

// registerStageStruct wires a struct's fields into the input/output
// declarations of whichever stage slots it was tagged for, establishing the
// a_<field> / v_<field> cross-stage naming convention. The first struct
// tagged for a given slot wins; later ones tagged for the same slot are
// ignored, matching a single-entry-struct-per-stage model.
func (b *Backend) registerStageStruct(name string, info structInfo, stages []stageAnnotation) {
	for _, sa := range stages {
		switch {
		case sa.Stage == codegen.Vertex && sa.IO == stageIn:
			if b.vertexInputStruct != "" {
				continue
			}
			b.vertexInputStruct = name
			for idx, f := range info.Fields {
				varName := "a_" + f.Name
				decl := fmt.Sprintf("layout(location = %d) in %s %s;", idx, mapType(f.Type), varName)
				b.vertexInputDecls = append(b.vertexInputDecls, decl)
				b.vertexInputMap[f.Name] = varName
			}

		case sa.Stage == codegen.Vertex && sa.IO == stageOut:
			if b.vertexOutputStruct != "" {
				continue
			}
			b.vertexOutputStruct = name
			for idx, f := range info.Fields {
				varName := "v_" + f.Name
				decl := fmt.Sprintf("layout(location = %d) out %s %s;", idx, mapType(f.Type), varName)
				b.vertexOutputDecls = append(b.vertexOutputDecls, decl)
				b.vertexOutputMap[f.Name] = varName
				b.fragmentInputMap[f.Name] = varName
			}

		case sa.Stage == codegen.Fragment && sa.IO == stageIn:
			if b.fragmentInputStruct != "" {
				continue
			}
			b.fragmentInputStruct = name
			for idx, f := range info.Fields {
				varName := "v_" + f.Name
				decl := fmt.Sprintf("layout(location = %d) in %s %s;", idx, mapType(f.Type), varName)
				b.fragmentInputDecls = append(b.fragmentInputDecls, decl)
				b.fragmentInputMap[f.Name] = varName
			}
		}
	}
}

// parseStruct reads `struct NAME { TYPE name[suffix] ; ... }` from the front
// of tokens and returns how many tokens it consumed, 0 on malformed input.
func (b *Backend) parseStruct(tokens []string) int {
	if len(tokens) < 3 {
		return 0
	}
	name := tokens[1]

	index := 2
	for index < len(tokens) && tokens[index] != "{" {
		index++
	}
	if index >= len(tokens) {
		return 0
	}
	index++ // consume '{'

	var fields []structField
	for index < len(tokens) {
		if tokens[index] == "}" {
			index++
			break
		}
		if index+1 >= len(tokens) {
			break
		}
		fieldType := tokens[index]
		index++
		fieldName := tokens[index]
		index++

		var suffixParts []string
		for index < len(tokens) && tokens[index] != ";" {
			if tokens[index] == "}" {
				break
			}
			suffixParts = append(suffixParts, tokens[index])
			index++
		}
		if index < len(tokens) && tokens[index] == ";" {
			index++
		}
		fields = append(fields, structField{Type: fieldType, Name: fieldName, ArraySuffix: strings.Join(suffixParts, "")})
	}

	alignment, _ := b.takeAlignAnnotation()
	stages := b.takeStageAnnotations()
	info := structInfo{Fields: fields, Alignment: alignment}

	b.registerStageStruct(name, info, stages)
	b.structs[name] = info
	b.globalStructDecls = append(b.globalStructDecls, formatStructDefinition(name, info))

	return index
}

// parseGlobalDeclaration reads one `[const] TYPE NAME ;` global, wires it
// through whatever annotation currently applies (@output, @buffer, @uniform
// or @push), and returns how many tokens it consumed.
func (b *Backend) parseGlobalDeclaration(tokens []string) int {
	semicolon := -1
	for i, t := range tokens {
		if t == ";" {
			semicolon = i
			break
		}
	}
	if semicolon < 0 {
		return 0
	}

	idx := 0
	// A parenthesis-free `@output N TYPE NAME;` leaves its location N as the
	// first token of the declaration.
	outputLocation := -1
	if v, err := strconv.Atoi(tokens[0]); err == nil && semicolon > 0 {
		for _, ann := range b.pending {
			if ann.kind == annOutput {
				outputLocation = v
				idx = 1
				break
			}
		}
	}
	if idx < semicolon && tokens[idx] == "const" {
		idx++
	}
	if idx >= semicolon {
		return semicolon + 1
	}
	typeToken := tokens[idx]
	idx++
	if idx >= semicolon {
		return semicolon + 1
	}

	nameToken := tokens[idx]
	idx++
	for idx < semicolon {
		nameToken += tokens[idx]
		idx++
	}

	glslName := nameToken
	if opName, ok := b.takeOpenGLNameAnnotation(); ok {
		glslName = opName
	}

	if out, ok := b.takeOutputAnnotation(); ok {
		if outputLocation >= 0 {
			out.Location = outputLocation
		}
		decl := fmt.Sprintf("layout(location = %d) out %s %s;", out.Location, mapType(typeToken), glslName)
		b.fragmentOutputDecls = append(b.fragmentOutputDecls, decl)
		return semicolon + 1
	}

	transform, hasTransform := b.takeTransformAnnotation()
	if buffer, ok := b.takeBufferAnnotation(); ok {
		var t *transformAnnotation
		if hasTransform {
			t = &transform
		}
		if err := b.buildUniformBlock(typeToken, glslName, buffer, t); err != nil {
			b.setErr(err)
		}
		return semicolon + 1
	}

	hasPush := b.takePushAnnotation()
	uniform, hasUniform := b.takeUniformAnnotation()
	if !hasUniform && hasPush {
		hasUniform = true
	}
	if hasUniform {
		decl := fmt.Sprintf("uniform %s %s;", mapType(typeToken), glslName)
		b.pushUniformDecl(decl)
		_ = uniform // set/binding carry no meaning for a plain uniform scalar/sampler
		return semicolon + 1
	}

	var line strings.Builder
	for i := 0; i <= semicolon && i < len(tokens); i++ {
		tok := tokens[i]
		if i > 0 {
			if tok == ";" {
				line.WriteString(tok)
				break
			}
			if tok != "(" && tok != ")" && tok != "," && tok != "[" && tok != "]" {
				line.WriteByte(' ')
			}
		}
		line.WriteString(tok)
	}
	b.globalDecls = append(b.globalDecls, line.String())

	return semicolon + 1
}

func (b *Backend) buildUniformBlock(structType, instanceName string, buffer bufferAnnotation, transform *transformAnnotation) error {
	info, ok := b.structs[structType]
	if !ok {
		return &report.InternalError{Message: fmt.Sprintf("Struct '%s' not found for buffer declaration.", structType)}
	}

	var layoutItems []string
	if info.Alignment != "" {
		layoutItems = append(layoutItems, info.Alignment)
	}
	if buffer.Binding != nil {
		layoutItems = append(layoutItems, fmt.Sprintf("binding = %d", *buffer.Binding))
	}
	layoutPrefix := ""
	if len(layoutItems) > 0 {
		layoutPrefix = fmt.Sprintf("layout(%s) ", strings.Join(layoutItems, ", "))
	}

	blockName := instanceName + "_Block"
	maxElements := -1
	if transform != nil {
		if transform.BlockName != "" {
			blockName = transform.BlockName
		}
		maxElements = transform.MaxElements
	}

	var block strings.Builder
	fmt.Fprintf(&block, "%suniform %s {\n", layoutPrefix, blockName)
	for _, f := range info.Fields {
		if maxElements >= 0 && !isScalarType(f.Type) {
			fmt.Fprintf(&block, "    %s %s[%d];\n", mapType(f.Type), f.Name, maxElements)
			continue
		}
		fmt.Fprintf(&block, "    %s %s%s;\n", mapType(f.Type), f.Name, f.ArraySuffix)
	}
	fmt.Fprintf(&block, "} %s;", instanceName)

	b.pushUniformDecl(block.String())
	return nil
}

// resolveVersion turns the version token that follows a `@hana` builtin
// (`@hana 450;`, read from the next Translatable) into a GLSL #version
// directive. "latest" and an absent version both fall back to 410 core —
// the newest GLSL version OpenGL 4.1 (macOS's ceiling) exposes.
func resolveVersion(tokens []string) string {
	if len(tokens) == 0 || tokens[0] == "latest" {
		return "#version 410 core"
	}
	return fmt.Sprintf("#version %s core", tokens[0])
}
