package composer

import (
	"fmt"
	"strings"

	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
)

// define is one compile-time constant emitted into the shader preamble.
type define struct {
	name  string
	value string
}

// fragmentBuilder accumulates the sections of one fragment shader in a fixed
// order: headers, defines, uniform declarations, functions, entry point. It is
// the concrete sink behind the feature injection interface; a fresh builder is
// created per Build call so no state leaks between compositions.
type fragmentBuilder struct {
	headers     []string
	defines     []define
	uniformDecl string
	functions   []string
	entryPoint  string
}

var _ feature.Builder = &fragmentBuilder{}

func newFragmentBuilder() *fragmentBuilder {
	return &fragmentBuilder{}
}

func (b *fragmentBuilder) AddHeader(text string) {
	b.headers = append(b.headers, text)
}

func (b *fragmentBuilder) AddDefine(name, value string) {
	b.defines = append(b.defines, define{name: name, value: value})
}

func (b *fragmentBuilder) AddFunction(source string) {
	b.functions = append(b.functions, source)
}

func (b *fragmentBuilder) SetEntryPoint(source string) {
	b.entryPoint = source
}

// setUniformBlock installs the generated uniform declarations. Only the
// composer calls this; features never declare uniforms directly.
func (b *fragmentBuilder) setUniformBlock(decl string) {
	b.uniformDecl = decl
}

// buildFragment concatenates every section into one complete shader string.
// Section order and separators are fixed so equal inputs always produce
// byte-identical output.
func (b *fragmentBuilder) buildFragment() string {
	var out strings.Builder
	for _, h := range b.headers {
		out.WriteString(strings.TrimRight(h, "\n"))
		out.WriteString("\n")
	}
	if len(b.defines) > 0 {
		out.WriteString("\n")
		for _, d := range b.defines {
			fmt.Fprintf(&out, "const %s = %s;\n", d.name, d.value)
		}
	}
	if b.uniformDecl != "" {
		out.WriteString("\n")
		out.WriteString(strings.TrimRight(b.uniformDecl, "\n"))
		out.WriteString("\n")
	}
	for _, f := range b.functions {
		out.WriteString("\n")
		out.WriteString(strings.TrimRight(f, "\n"))
		out.WriteString("\n")
	}
	if b.entryPoint != "" {
		out.WriteString("\n")
		out.WriteString(strings.TrimRight(b.entryPoint, "\n"))
		out.WriteString("\n")
	}
	return out.String()
}
