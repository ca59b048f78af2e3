package fractal

import (
	"fmt"

	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// SyncUniforms pushes the numeric feature parameters of a config into the
// uniform set. Structural parameters (step counts, formula selection, toggles)
// travel through GlobalDefines and are compiled in; everything here is a plain
// value the shader reads from the uniform buffer each frame, so a config change
// takes effect without waiting on anything but the next frame.
//
// Uniforms the set's schema does not declare are skipped, so a caller running a
// trimmed schema stays valid.
//
// Parameters:
//   - cfg: the config to read parameters from
//   - set: the uniform set to write into
//
// Returns:
//   - error: if a declared uniform rejects its value
func SyncUniforms(cfg feature.Config, set uniform.Set) error {
	fogColor := cfg.ParamOr(FeatureFog, "color", feature.ColorValue(0.01, 0.01, 0.02)).Vec3()
	fogDensity := cfg.ParamOr(FeatureFog, "density", feature.FloatValue(0)).Float()

	writes := []struct {
		key string
		val uniform.Value
	}{
		{"uPower", uniform.Float(cfg.ParamOr(FeatureFormula, "power", feature.FloatValue(8)).Float())},
		{"uBailout", uniform.Float(cfg.ParamOr(FeatureFormula, "bailout", feature.FloatValue(4)).Float())},
		{"uJuliaC", vec3Value(cfg.ParamOr(FeatureFormula, "juliaC", feature.Vec3Value(0.2, 0.45, -0.1)))},
		{"uBoxScale", uniform.Float(cfg.ParamOr(FeatureFormula, "boxScale", feature.FloatValue(2.5)).Float())},
		{"uDetail", uniform.Float(cfg.ParamOr(FeatureRaymarch, "detail", feature.FloatValue(0.0005)).Float())},
		{"uMaxDistance", uniform.Float(cfg.ParamOr(FeatureRaymarch, "maxDistance", feature.FloatValue(1000)).Float())},
		{"uAmbient", uniform.Float(cfg.ParamOr(FeatureLighting, "ambient", feature.FloatValue(0.08)).Float())},
		{"uShadowSoftness", uniform.Float(cfg.ParamOr(FeatureShadows, "softness", feature.FloatValue(8)).Float())},
		{"uColorScale", uniform.Float(cfg.ParamOr(FeatureColoring, "scale", feature.FloatValue(1)).Float())},
		{"uColorOffset", uniform.Float(cfg.ParamOr(FeatureColoring, "offset", feature.FloatValue(0)).Float())},
		{"uFog", uniform.Vec4(fogColor[0], fogColor[1], fogColor[2], fogDensity)},
	}

	for _, w := range writes {
		if _, ok := set.Get(w.key); !ok {
			continue
		}
		if err := set.Write(w.key, w.val); err != nil {
			return fmt.Errorf("sync %s: %w", w.key, err)
		}
	}
	return nil
}

func vec3Value(v feature.ParamValue) uniform.Value {
	c := v.Vec3()
	return uniform.Vec3(c[0], c[1], c[2])
}
