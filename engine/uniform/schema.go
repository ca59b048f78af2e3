package uniform

import (
	"fmt"
	"strings"
)

// fieldLayout is the resolved byte placement of one definition inside the
// packed uniform buffer, following WGSL uniform-address-space rules.
type fieldLayout struct {
	def    Definition
	offset int
	// stride is the byte distance between array elements; equals the element
	// size for non-array fields.
	stride int
}

// schemaImpl is the implementation of the Schema interface.
type schemaImpl struct {
	defs    []Definition
	byName  map[string]int
	layout  []fieldLayout
	byteLen int
}

// Schema is the declarative table of every GPU-visible parameter. It owns the
// declaration order, the WGSL struct emitted into composed shaders, and the
// byte layout of the packed uniform buffer, so the CPU and GPU views can never
// disagree.
type Schema interface {
	// Definitions returns every definition in declaration order.
	//
	// Returns:
	//   - []Definition: the definitions, freshly copied
	Definitions() []Definition

	// Lookup finds a definition by name.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - Definition: the definition, if found
	//   - bool: true if the name is declared
	Lookup(name string) (Definition, bool)

	// ByteSize returns the packed buffer size in bytes, already rounded up to
	// the 16-byte uniform-buffer alignment.
	//
	// Returns:
	//   - int: the buffer size in bytes
	ByteSize() int

	// WGSLStruct emits the WGSL struct declaration plus the uniform binding
	// statement for the given group and binding indices. The emission is
	// deterministic: equal schemas yield byte-identical text.
	//
	// Parameters:
	//   - structName: the WGSL struct type name
	//   - varName: the WGSL variable name
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the WGSL declaration text
	WGSLStruct(structName, varName string, group, binding int) string

	// NewSet creates an independent uniform set initialized from every
	// definition's default. Vector and array defaults are deep-cloned.
	//
	// Returns:
	//   - Set: the new set
	NewSet() Set
}

var _ Schema = &schemaImpl{}

// NewSchema creates a Schema from the supplied options. Definitions keep the
// order they were added in; duplicate names panic because a schema with two
// uniforms of one name can never produce a valid shader.
//
// Parameters:
//   - options: functional options to configure the schema
//
// Returns:
//   - Schema: the newly created schema
func NewSchema(options ...SchemaBuilderOption) Schema {
	s := &schemaImpl{byName: map[string]int{}}
	for _, option := range options {
		option(s)
	}
	s.computeLayout()
	return s
}

func (s *schemaImpl) add(def Definition) {
	if _, exists := s.byName[def.Name]; exists {
		panic(fmt.Sprintf("duplicate uniform definition %q", def.Name))
	}
	if err := def.Default.validFor(def); err != nil {
		panic(fmt.Sprintf("invalid default: %v", err))
	}
	s.byName[def.Name] = len(s.defs)
	s.defs = append(s.defs, def)
}

func alignUp(v, align int) int {
	return (v + align - 1) / align * align
}

// computeLayout resolves byte offsets per WGSL uniform rules: scalars and
// vectors use their natural alignment, array elements are padded to a 16-byte
// stride, and the whole struct is rounded to 16 bytes.
func (s *schemaImpl) computeLayout() {
	s.layout = make([]fieldLayout, 0, len(s.defs))
	cursor := 0
	for _, def := range s.defs {
		align := def.Type.alignOf()
		stride := def.Type.sizeOf()
		if def.ArraySize > 0 {
			align = 16
			stride = alignUp(stride, 16)
		}
		offset := alignUp(cursor, align)
		s.layout = append(s.layout, fieldLayout{def: def, offset: offset, stride: stride})
		cursor = offset + stride*def.elementCount()
	}
	s.byteLen = alignUp(cursor, 16)
	if s.byteLen == 0 {
		s.byteLen = 16
	}
}

func (s *schemaImpl) Definitions() []Definition {
	out := make([]Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

func (s *schemaImpl) Lookup(name string) (Definition, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Definition{}, false
	}
	return s.defs[i], true
}

func (s *schemaImpl) ByteSize() int {
	return s.byteLen
}

func (s *schemaImpl) WGSLStruct(structName, varName string, group, binding int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", structName)
	for _, def := range s.defs {
		if def.ArraySize > 0 {
			fmt.Fprintf(&b, "    %s: array<%s, %d>,\n", def.Name, def.Type.WGSL(), def.ArraySize)
		} else {
			fmt.Fprintf(&b, "    %s: %s,\n", def.Name, def.Type.WGSL())
		}
	}
	b.WriteString("}\n")
	fmt.Fprintf(&b, "@group(%d) @binding(%d) var<uniform> %s: %s;\n", group, binding, varName, structName)
	return b.String()
}

func (s *schemaImpl) NewSet() Set {
	return newSet(s)
}
