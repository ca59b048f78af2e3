package uniform

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func testSchema() Schema {
	return NewSchema(WithDefinitions(
		Definition{Name: "uTime", Type: TypeFloat, Default: Float(0)},
		Definition{Name: "uIterations", Type: TypeInt, Default: Int(12)},
		Definition{Name: "uCameraPos", Type: TypeVec3, Default: Vec3(0, 0, -3)},
		Definition{Name: "uTint", Type: TypeVec4, Default: Vec4(1, 1, 1, 1)},
		Definition{Name: "uLights", Type: TypeVec4, ArraySize: 4, Default: Vec4(0, 0, 0, 0)},
	))
}

func TestNewSetDefaults(t *testing.T) {
	set := testSchema().NewSet()

	v, ok := set.Get("uCameraPos")
	if !ok {
		t.Fatal("uCameraPos not declared")
	}
	if got := v.Components(); got[0] != 0 || got[1] != 0 || got[2] != -3 {
		t.Errorf("uCameraPos default = %v, want [0 0 -3]", got)
	}

	v, ok = set.Get("uIterations")
	if !ok || v.Float64() != 12 {
		t.Errorf("uIterations default = %v, want 12", v.Float64())
	}
}

func TestValuesNeverAliased(t *testing.T) {
	set := testSchema().NewSet()

	in := Vec3(1, 2, 3)
	if err := set.Write("uCameraPos", in); err != nil {
		t.Fatal(err)
	}
	// Mutating the caller's value after the write must not leak into the set.
	in.data[0] = 99
	got, _ := set.Get("uCameraPos")
	if got.Components()[0] != 1 {
		t.Error("write aliased the caller's value")
	}

	// Mutating a read result must not leak back either.
	out, _ := set.Get("uCameraPos")
	out.data[1] = 99
	again, _ := set.Get("uCameraPos")
	if again.Components()[1] != 2 {
		t.Error("read aliased the set's storage")
	}
}

func TestArrayElementsClonedIndependently(t *testing.T) {
	set := testSchema().NewSet()
	if err := set.WriteElement("uLights", 2, Vec4(5, 6, 7, 8)); err != nil {
		t.Fatal(err)
	}
	v0, _ := set.GetElement("uLights", 0)
	if v0.Components()[0] != 0 {
		t.Error("writing element 2 changed element 0: defaults were aliased")
	}
	v2, _ := set.GetElement("uLights", 2)
	if v2.Components()[0] != 5 {
		t.Errorf("element 2 = %v, want [5 6 7 8]", v2.Components())
	}
}

func TestWriteTypeChecked(t *testing.T) {
	set := testSchema().NewSet()
	tests := []struct {
		name string
		key  string
		v    Value
	}{
		{"unknown key", "uMissing", Float(1)},
		{"wrong type", "uTime", Vec3(1, 2, 3)},
		{"int for float", "uTime", Int(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := set.Write(tt.key, tt.v); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if err := set.WriteElement("uLights", 9, Vec4(0, 0, 0, 0)); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestVersionBumpsOnWriteOnly(t *testing.T) {
	set := testSchema().NewSet()
	v0 := set.Version()
	set.Get("uTime")
	set.Bytes()
	if set.Version() != v0 {
		t.Error("reads changed the version")
	}
	if err := set.Write("uTime", Float(1.5)); err != nil {
		t.Fatal(err)
	}
	if set.Version() != v0+1 {
		t.Errorf("version = %d, want %d", set.Version(), v0+1)
	}
}

func TestLayoutOffsets(t *testing.T) {
	s := testSchema().(*schemaImpl)
	// uTime f32 at 0; uIterations i32 at 4; uCameraPos vec3 aligned to 16;
	// uTint vec4 at 32; uLights array of 4 vec4 at 48.
	wantOffsets := []int{0, 4, 16, 32, 48}
	for i, fl := range s.layout {
		if fl.offset != wantOffsets[i] {
			t.Errorf("field %s offset = %d, want %d", fl.def.Name, fl.offset, wantOffsets[i])
		}
	}
	if got := s.ByteSize(); got != 112 {
		t.Errorf("ByteSize() = %d, want 112", got)
	}
}

func TestBytesPacking(t *testing.T) {
	set := testSchema().NewSet()
	if err := set.Write("uTime", Float(2.5)); err != nil {
		t.Fatal(err)
	}
	if err := set.Write("uIterations", Int(-7)); err != nil {
		t.Fatal(err)
	}
	buf := set.Bytes()

	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); got != 2.5 {
		t.Errorf("uTime bytes = %v, want 2.5", got)
	}
	if got := int32(binary.LittleEndian.Uint32(buf[4:])); got != -7 {
		t.Errorf("uIterations bytes = %v, want -7", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[24:])); got != -3 {
		t.Errorf("uCameraPos.z bytes = %v, want -3", got)
	}
}

func TestWGSLStructDeterministic(t *testing.T) {
	s := testSchema()
	a := s.WGSLStruct("Params", "params", 0, 0)
	b := s.WGSLStruct("Params", "params", 0, 0)
	if a != b {
		t.Error("WGSLStruct emission is not deterministic")
	}
	for _, want := range []string{
		"struct Params {",
		"uCameraPos: vec3<f32>,",
		"uLights: array<vec4<f32>, 4>,",
		"@group(0) @binding(0) var<uniform> params: Params;",
	} {
		if !strings.Contains(a, want) {
			t.Errorf("WGSLStruct missing %q in:\n%s", want, a)
		}
	}
}
