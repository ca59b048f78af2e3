package preset

import (
	"testing"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/fractal"
	"github.com/gamazama/GMT-fractals-sub005/engine/gradient"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
)

func TestRoundTripPreservesSplitOffset(t *testing.T) {
	reg := fractal.NewRegistry()
	offset := precision.SplitVec(common.Vec3{X: 1e9 + 0.123456789, Y: -7.5, Z: 0.25})

	in := Preset{
		Camera: precision.CameraSnapshot{
			LocalPosition:        common.Vec3{X: 0.1, Y: 0.2, Z: -0.3},
			Rotation:             common.QuatFromAxisAngle(common.Vec3{Y: 1}, 0.8),
			WorldOffset:          offset,
			LastMeasuredDistance: 0.042,
		},
		Config:   reg.DefaultConfig(),
		Gradient: []gradient.Stop{{Position: 0, Color: [3]float64{0, 0, 0}}, {Position: 1, Color: [3]float64{1, 0.5, 0}}},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data, reg)
	if err != nil {
		t.Fatal(err)
	}

	// The split partition survives exactly, not just the reconstructed value.
	if out.Camera.WorldOffset != offset {
		t.Errorf("offset partition changed:\n got %+v\nwant %+v", out.Camera.WorldOffset, offset)
	}
	if out.Camera.LocalPosition != in.Camera.LocalPosition {
		t.Errorf("local position = %+v, want %+v", out.Camera.LocalPosition, in.Camera.LocalPosition)
	}
	if out.Camera.Rotation.AngleTo(in.Camera.Rotation) > 1e-12 {
		t.Error("rotation drifted on round trip")
	}
	if out.Camera.LastMeasuredDistance != in.Camera.LastMeasuredDistance {
		t.Errorf("distance = %v, want %v", out.Camera.LastMeasuredDistance, in.Camera.LastMeasuredDistance)
	}
	if len(out.Gradient) != 2 || out.Gradient[1].Color != [3]float64{1, 0.5, 0} {
		t.Errorf("gradient = %+v, want the encoded stops", out.Gradient)
	}
}

func TestRoundTripPreservesConfig(t *testing.T) {
	reg := fractal.NewRegistry()
	cfg := reg.DefaultConfig()
	cfg.Mode = feature.RenderModePathTracing
	cfg.Set(fractal.FeatureFormula, "type", feature.EnumValue(fractal.FormulaJulia))
	cfg.Set(fractal.FeatureFormula, "power", feature.FloatValue(6.5))
	cfg.Set(fractal.FeatureShadows, "enabled", feature.BoolValue(false))

	data, err := Encode(Preset{Config: cfg, Camera: precision.CameraSnapshot{Rotation: common.QuatIdentity()}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data, reg)
	if err != nil {
		t.Fatal(err)
	}
	if out.Config.Mode != feature.RenderModePathTracing {
		t.Error("mode not restored")
	}
	if v, _ := out.Config.Param(fractal.FeatureFormula, "type"); v.Enum() != fractal.FormulaJulia {
		t.Errorf("formula type = %q, want julia", v.Enum())
	}
	if v, _ := out.Config.Param(fractal.FeatureFormula, "power"); v.Float() != 6.5 {
		t.Errorf("power = %v, want 6.5", v.Float())
	}
	if v, _ := out.Config.Param(fractal.FeatureShadows, "enabled"); v.Bool() {
		t.Error("shadows enabled flag not restored")
	}
}

func TestDecodeMissingKeysFallsBackToDefaults(t *testing.T) {
	reg := fractal.NewRegistry()
	out, err := Decode([]byte(`{}`), reg)
	if err != nil {
		t.Fatal(err)
	}
	if out.Camera.WorldOffset.Value() != (common.Vec3{}) {
		t.Error("missing offset should default to the origin")
	}
	if out.Camera.Rotation != common.QuatIdentity() {
		t.Error("missing rotation should default to identity")
	}
	if out.Camera.LastMeasuredDistance != DefaultTargetDistance {
		t.Errorf("missing distance = %v, want %v", out.Camera.LastMeasuredDistance, DefaultTargetDistance)
	}
	// Feature defaults come from the registry declarations.
	if v, _ := out.Config.Param(fractal.FeatureFormula, "power"); v.Float() != 8 {
		t.Errorf("default power = %v, want 8", v.Float())
	}
}

func TestDecodePartialFeatureTree(t *testing.T) {
	reg := fractal.NewRegistry()
	doc := []byte(`{"features": {"formula": {"power": {"kind": "float", "number": 4}}}}`)
	out, err := Decode(doc, reg)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Config.Param(fractal.FeatureFormula, "power"); v.Float() != 4 {
		t.Errorf("power = %v, want overridden 4", v.Float())
	}
	// Siblings that the document omits keep their defaults.
	if v, _ := out.Config.Param(fractal.FeatureFormula, "bailout"); v.Float() != 4 {
		t.Errorf("bailout = %v, want default 4", v.Float())
	}
}

func TestDecodeRejectsMistypedKnownParam(t *testing.T) {
	reg := fractal.NewRegistry()
	doc := []byte(`{"features": {"formula": {"power": {"kind": "bool", "bool": true}}}}`)
	out, err := Decode(doc, reg)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Config.Param(fractal.FeatureFormula, "power"); v.Kind() != feature.ParamFloat || v.Float() != 8 {
		t.Error("mistyped persisted value should fall back to the declared default")
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, err := Decode([]byte(`{`), fractal.NewRegistry()); err == nil {
		t.Error("expected a parse error")
	}
}
