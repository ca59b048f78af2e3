package feature

import "fmt"

// ParamKind tags the concrete type held by a ParamValue.
type ParamKind int

const (
	// ParamFloat is a scalar float parameter.
	ParamFloat ParamKind = iota
	// ParamInt is an integer parameter.
	ParamInt
	// ParamBool is an on/off toggle.
	ParamBool
	// ParamVec3 is a 3-component vector parameter.
	ParamVec3
	// ParamColor is an RGB color parameter.
	ParamColor
	// ParamEnum is a string selection from a fixed option list.
	ParamEnum
)

// String returns the kind's name.
//
// Returns:
//   - string: the kind name
func (k ParamKind) String() string {
	switch k {
	case ParamFloat:
		return "float"
	case ParamInt:
		return "int"
	case ParamBool:
		return "bool"
	case ParamVec3:
		return "vec3"
	case ParamColor:
		return "color"
	case ParamEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParamValue is a tagged-union parameter value. Exactly one payload is
// meaningful, selected by Kind; accessors return the zero value on a kind
// mismatch rather than panicking, because mistyped config input is expected
// user data, not a programming error.
type ParamValue struct {
	kind ParamKind
	num  float64
	b    bool
	vec  [3]float64
	s    string
}

// FloatValue constructs a ParamFloat value.
func FloatValue(v float64) ParamValue {
	return ParamValue{kind: ParamFloat, num: v}
}

// IntValue constructs a ParamInt value.
func IntValue(v int) ParamValue {
	return ParamValue{kind: ParamInt, num: float64(v)}
}

// BoolValue constructs a ParamBool value.
func BoolValue(v bool) ParamValue {
	return ParamValue{kind: ParamBool, b: v}
}

// Vec3Value constructs a ParamVec3 value.
func Vec3Value(x, y, z float64) ParamValue {
	return ParamValue{kind: ParamVec3, vec: [3]float64{x, y, z}}
}

// ColorValue constructs a ParamColor value from RGB components in [0,1].
func ColorValue(r, g, b float64) ParamValue {
	return ParamValue{kind: ParamColor, vec: [3]float64{r, g, b}}
}

// EnumValue constructs a ParamEnum value.
func EnumValue(option string) ParamValue {
	return ParamValue{kind: ParamEnum, s: option}
}

// Kind returns the value's type tag.
//
// Returns:
//   - ParamKind: the tag
func (p ParamValue) Kind() ParamKind {
	return p.kind
}

// Float returns the scalar payload of a ParamFloat, or 0 otherwise.
func (p ParamValue) Float() float64 {
	if p.kind != ParamFloat {
		return 0
	}
	return p.num
}

// Int returns the payload of a ParamInt, or 0 otherwise.
func (p ParamValue) Int() int {
	if p.kind != ParamInt {
		return 0
	}
	return int(p.num)
}

// Bool returns the payload of a ParamBool, or false otherwise.
func (p ParamValue) Bool() bool {
	if p.kind != ParamBool {
		return false
	}
	return p.b
}

// Vec3 returns the payload of a ParamVec3 or ParamColor, or zeros otherwise.
func (p ParamValue) Vec3() [3]float64 {
	if p.kind != ParamVec3 && p.kind != ParamColor {
		return [3]float64{}
	}
	return p.vec
}

// Enum returns the payload of a ParamEnum, or "" otherwise.
func (p ParamValue) Enum() string {
	if p.kind != ParamEnum {
		return ""
	}
	return p.s
}

// String renders the value for hashing and diagnostics. The rendering is
// deterministic so equal values always produce equal text.
//
// Returns:
//   - string: the rendered value
func (p ParamValue) String() string {
	switch p.kind {
	case ParamFloat:
		return fmt.Sprintf("f:%g", p.num)
	case ParamInt:
		return fmt.Sprintf("i:%d", int(p.num))
	case ParamBool:
		return fmt.Sprintf("b:%t", p.b)
	case ParamVec3:
		return fmt.Sprintf("v:%g,%g,%g", p.vec[0], p.vec[1], p.vec[2])
	case ParamColor:
		return fmt.Sprintf("c:%g,%g,%g", p.vec[0], p.vec[1], p.vec[2])
	case ParamEnum:
		return "e:" + p.s
	default:
		return ""
	}
}

// ParamSpec declares one parameter a feature exposes: its key, type, default,
// numeric bounds and optional visibility predicate.
type ParamSpec struct {
	// Key is the parameter identifier within the feature's namespace.
	Key string

	// Kind is the parameter's type tag.
	Kind ParamKind

	// Default is the initial value; its kind must match Kind.
	Default ParamValue

	// Min and Max bound ParamFloat and ParamInt values.
	Min, Max float64

	// Options lists the legal values for a ParamEnum.
	Options []string

	// NoReset marks a purely cosmetic control whose writes do not invalidate
	// accumulated samples.
	NoReset bool

	// VisibleWhen optionally hides the parameter from UIs depending on other
	// config state. It never affects composition.
	VisibleWhen func(Config) bool
}
