package fractal

import (
	"fmt"

	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/composer"
)

// Feature IDs, which double as the parameter namespaces in configs and presets.
const (
	FeatureFormula  = "formula"
	FeatureRaymarch = "raymarch"
	FeatureLighting = "lighting"
	FeatureShadows  = "shadows"
	FeatureColoring = "coloring"
	FeatureFog      = "fog"
)

// Formula type identifiers for the formula feature's "type" enum parameter.
const (
	FormulaMandelbulb = "mandelbulb"
	FormulaJulia      = "julia"
	FormulaMandelbox  = "mandelbox"
)

// formulaID maps a formula enum value to the FORMULA_ID constant compiled into
// the shader. Unknown values fall back to the Mandelbulb.
func formulaID(name string) int {
	switch name {
	case FormulaJulia:
		return 1
	case FormulaMandelbox:
		return 2
	default:
		return 0
	}
}

// GlobalDefines returns the compile-time constants derived from structural
// config parameters. Changing any of these forces a recompile; purely numeric
// parameters travel through the uniform buffer instead and never appear here.
//
// Returns:
//   - []composer.GlobalDefine: the define derivations, in emission order
func GlobalDefines() []composer.GlobalDefine {
	return []composer.GlobalDefine{
		{
			Name: "MAX_MARCH_STEPS",
			Derive: func(cfg feature.Config) string {
				return fmt.Sprintf("%d", cfg.ParamOr(FeatureRaymarch, "steps", feature.IntValue(256)).Int())
			},
		},
		{
			Name: "FRACTAL_ITERATIONS",
			Derive: func(cfg feature.Config) string {
				return fmt.Sprintf("%d", cfg.ParamOr(FeatureRaymarch, "iterations", feature.IntValue(12)).Int())
			},
		},
		{
			Name: "FORMULA_ID",
			Derive: func(cfg feature.Config) string {
				return fmt.Sprintf("%d", formulaID(cfg.ParamOr(FeatureFormula, "type", feature.EnumValue(FormulaMandelbulb)).Enum()))
			},
		},
		{
			Name: "LIGHT_COUNT",
			Derive: func(cfg feature.Config) string {
				n := cfg.ParamOr(FeatureLighting, "count", feature.IntValue(1)).Int()
				if n < 0 {
					n = 0
				}
				if n > MaxLights {
					n = MaxLights
				}
				return fmt.Sprintf("%d", n)
			},
		},
		{
			Name: "PATH_TRACING",
			Derive: func(cfg feature.Config) string {
				if cfg.Mode == feature.RenderModePathTracing {
					return "1"
				}
				return "0"
			},
		},
		{
			Name: "SHADOW_STEPS",
			Derive: func(cfg feature.Config) string {
				if !cfg.ParamOr(FeatureShadows, "enabled", feature.BoolValue(true)).Bool() {
					return "0"
				}
				return fmt.Sprintf("%d", cfg.ParamOr(FeatureShadows, "quality", feature.IntValue(32)).Int())
			},
		},
	}
}
