package uniform

import "fmt"

// Type enumerates the shader-visible value types a uniform may carry.
type Type int

const (
	// TypeFloat is a single 32-bit float.
	TypeFloat Type = iota
	// TypeInt is a single signed 32-bit integer.
	TypeInt
	// TypeUInt is a single unsigned 32-bit integer.
	TypeUInt
	// TypeVec2 is a 2-component float vector.
	TypeVec2
	// TypeVec3 is a 3-component float vector.
	TypeVec3
	// TypeVec4 is a 4-component float vector (also used for colors).
	TypeVec4
)

// WGSL returns the WGSL type name for t.
//
// Returns:
//   - string: the WGSL spelling of the type
func (t Type) WGSL() string {
	switch t {
	case TypeFloat:
		return "f32"
	case TypeInt:
		return "i32"
	case TypeUInt:
		return "u32"
	case TypeVec2:
		return "vec2<f32>"
	case TypeVec3:
		return "vec3<f32>"
	case TypeVec4:
		return "vec4<f32>"
	default:
		return "f32"
	}
}

// Components returns how many 32-bit lanes the type occupies.
//
// Returns:
//   - int: the component count
func (t Type) Components() int {
	switch t {
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	default:
		return 1
	}
}

// alignOf returns the WGSL uniform-address-space alignment of the type in bytes.
func (t Type) alignOf() int {
	switch t {
	case TypeVec2:
		return 8
	case TypeVec3, TypeVec4:
		return 16
	default:
		return 4
	}
}

// sizeOf returns the WGSL size of the type in bytes.
func (t Type) sizeOf() int {
	return t.Components() * 4
}

// Value is one uniform value: a type tag plus its numeric components. Values
// are deep-cloned on every read and write so no caller ever aliases the set's
// internal storage.
type Value struct {
	typ  Type
	data []float64
}

// Float constructs a TypeFloat value.
func Float(v float64) Value {
	return Value{typ: TypeFloat, data: []float64{v}}
}

// Int constructs a TypeInt value.
func Int(v int32) Value {
	return Value{typ: TypeInt, data: []float64{float64(v)}}
}

// UInt constructs a TypeUInt value.
func UInt(v uint32) Value {
	return Value{typ: TypeUInt, data: []float64{float64(v)}}
}

// Vec2 constructs a TypeVec2 value.
func Vec2(x, y float64) Value {
	return Value{typ: TypeVec2, data: []float64{x, y}}
}

// Vec3 constructs a TypeVec3 value.
func Vec3(x, y, z float64) Value {
	return Value{typ: TypeVec3, data: []float64{x, y, z}}
}

// Vec4 constructs a TypeVec4 value.
func Vec4(x, y, z, w float64) Value {
	return Value{typ: TypeVec4, data: []float64{x, y, z, w}}
}

// Type returns the value's type tag.
//
// Returns:
//   - Type: the type tag
func (v Value) Type() Type {
	return v.typ
}

// Float64 returns the first component, which is the whole value for scalars.
//
// Returns:
//   - float64: the first component
func (v Value) Float64() float64 {
	if len(v.data) == 0 {
		return 0
	}
	return v.data[0]
}

// Components returns a copy of the value's numeric components.
//
// Returns:
//   - []float64: a freshly allocated copy of the components
func (v Value) Components() []float64 {
	out := make([]float64, len(v.data))
	copy(out, v.data)
	return out
}

// Clone returns a deep copy of the value.
//
// Returns:
//   - Value: the copy
func (v Value) Clone() Value {
	return Value{typ: v.typ, data: v.Components()}
}

// validFor reports whether the value can be stored under the given definition,
// checking both the type tag and the component count.
func (v Value) validFor(def Definition) error {
	if v.typ != def.Type {
		return fmt.Errorf("uniform %q expects %s, got %s", def.Name, def.Type.WGSL(), v.typ.WGSL())
	}
	if len(v.data) != def.Type.Components() {
		return fmt.Errorf("uniform %q expects %d components, got %d", def.Name, def.Type.Components(), len(v.data))
	}
	return nil
}

// Definition declares one GPU-visible parameter: its name, type, optional
// array size and default value. The schema built from these definitions is the
// single source of truth every uniform buffer is initialized and cloned from.
type Definition struct {
	// Name is the shader-visible identifier.
	Name string

	// Type is the element type.
	Type Type

	// ArraySize is the fixed element count for array uniforms, or 0 for scalars.
	ArraySize int

	// Default is the initial value. For array uniforms Default seeds every
	// element; it is deep-cloned per element, never aliased.
	Default Value
}

// elementCount returns how many elements the definition occupies: 1 for
// scalars, ArraySize for arrays.
func (d Definition) elementCount() int {
	if d.ArraySize > 0 {
		return d.ArraySize
	}
	return 1
}
