package fractal

import "github.com/gamazama/GMT-fractals-sub005/engine/feature"

// Features returns the builtin feature set in injection order: the formula
// host, the raymarch core, then the shading features. Each definition is
// independently injectable; the shading features install no-op stubs for the
// probe and histogram variants so every cross-called symbol always resolves.
//
// Returns:
//   - []feature.Definition: the builtin features
func Features() []feature.Definition {
	return []feature.Definition{
		formulaFeature(),
		raymarchFeature(),
		lightingFeature(),
		shadowFeature(),
		coloringFeature(),
		fogFeature(),
	}
}

// NewRegistry builds a registry pre-populated with the builtin features.
//
// Returns:
//   - feature.Registry: the populated registry
func NewRegistry() feature.Registry {
	return feature.NewRegistry(feature.WithFeatures(Features()...))
}

func formulaFeature() feature.Definition {
	return feature.Definition{
		ID: FeatureFormula,
		Params: []feature.ParamSpec{
			{Key: "type", Kind: feature.ParamEnum, Default: feature.EnumValue(FormulaMandelbulb),
				Options: []string{FormulaMandelbulb, FormulaJulia, FormulaMandelbox}},
			{Key: "power", Kind: feature.ParamFloat, Default: feature.FloatValue(8), Min: 1, Max: 32},
			{Key: "bailout", Kind: feature.ParamFloat, Default: feature.FloatValue(4), Min: 1, Max: 64},
			{Key: "juliaC", Kind: feature.ParamVec3, Default: feature.Vec3Value(0.2, 0.45, -0.1),
				VisibleWhen: func(cfg feature.Config) bool {
					return cfg.ParamOr(FeatureFormula, "type", feature.EnumValue(FormulaMandelbulb)).Enum() == FormulaJulia
				}},
			{Key: "boxScale", Kind: feature.ParamFloat, Default: feature.FloatValue(2.5), Min: -4, Max: 4,
				VisibleWhen: func(cfg feature.Config) bool {
					return cfg.ParamOr(FeatureFormula, "type", feature.EnumValue(FormulaMandelbulb)).Enum() == FormulaMandelbox
				}},
		},
		Inject: func(b feature.Builder, cfg feature.Config, v feature.Variant) {
			// All variants march the same field, so the distance estimators
			// are always real code, never stubs.
			b.AddFunction(wgslFormulaSource)
		},
	}
}

func raymarchFeature() feature.Definition {
	return feature.Definition{
		ID: FeatureRaymarch,
		Params: []feature.ParamSpec{
			{Key: "steps", Kind: feature.ParamInt, Default: feature.IntValue(256), Min: 16, Max: 2048},
			{Key: "iterations", Kind: feature.ParamInt, Default: feature.IntValue(12), Min: 2, Max: 64},
			{Key: "detail", Kind: feature.ParamFloat, Default: feature.FloatValue(0.0005), Min: 1e-7, Max: 0.01},
			{Key: "maxDistance", Kind: feature.ParamFloat, Default: feature.FloatValue(1000), Min: 10, Max: 100000},
		},
		Inject: func(b feature.Builder, cfg feature.Config, v feature.Variant) {
			b.AddFunction(wgslMarchSource)
			switch v {
			case feature.VariantPhysics:
				b.SetEntryPoint(wgslPhysicsEntrySource)
			case feature.VariantHistogram:
				b.SetEntryPoint(wgslHistogramEntrySource)
			default:
				b.SetEntryPoint(wgslMainEntrySource)
			}
		},
	}
}

func lightingFeature() feature.Definition {
	return feature.Definition{
		ID: FeatureLighting,
		Params: []feature.ParamSpec{
			{Key: "count", Kind: feature.ParamInt, Default: feature.IntValue(1), Min: 0, Max: MaxLights},
			{Key: "ambient", Kind: feature.ParamFloat, Default: feature.FloatValue(0.08), Min: 0, Max: 1},
		},
		Inject: func(b feature.Builder, cfg feature.Config, v feature.Variant) {
			if v == feature.VariantMain {
				b.AddFunction(wgslLightingSource)
				b.AddFunction(wgslAmbientOcclusionSource)
				return
			}
			b.AddFunction(wgslLightingStubSource)
		},
	}
}

func shadowFeature() feature.Definition {
	return feature.Definition{
		ID: FeatureShadows,
		Params: []feature.ParamSpec{
			{Key: "enabled", Kind: feature.ParamBool, Default: feature.BoolValue(true)},
			{Key: "quality", Kind: feature.ParamInt, Default: feature.IntValue(32), Min: 8, Max: 256,
				VisibleWhen: func(cfg feature.Config) bool {
					return cfg.ParamOr(FeatureShadows, "enabled", feature.BoolValue(true)).Bool()
				}},
			{Key: "softness", Kind: feature.ParamFloat, Default: feature.FloatValue(8), Min: 1, Max: 64},
		},
		Inject: func(b feature.Builder, cfg feature.Config, v feature.Variant) {
			if v == feature.VariantMain && cfg.ParamOr(FeatureShadows, "enabled", feature.BoolValue(true)).Bool() {
				b.AddFunction(wgslShadowSource)
				return
			}
			b.AddFunction(wgslShadowStubSource)
		},
	}
}

func coloringFeature() feature.Definition {
	return feature.Definition{
		ID: FeatureColoring,
		Params: []feature.ParamSpec{
			{Key: "scale", Kind: feature.ParamFloat, Default: feature.FloatValue(1), Min: 0.01, Max: 100},
			{Key: "offset", Kind: feature.ParamFloat, Default: feature.FloatValue(0), Min: 0, Max: 1},
		},
		Inject: func(b feature.Builder, cfg feature.Config, v feature.Variant) {
			if v == feature.VariantMain {
				b.AddHeader(wgslColoringHeaderSource)
				b.AddFunction(wgslColoringSource)
				return
			}
			b.AddFunction(wgslColoringStubSource)
		},
	}
}

func fogFeature() feature.Definition {
	return feature.Definition{
		ID: FeatureFog,
		Params: []feature.ParamSpec{
			{Key: "density", Kind: feature.ParamFloat, Default: feature.FloatValue(0), Min: 0, Max: 1},
			{Key: "color", Kind: feature.ParamColor, Default: feature.ColorValue(0.01, 0.01, 0.02)},
		},
		Inject: func(b feature.Builder, cfg feature.Config, v feature.Variant) {
			if v == feature.VariantMain {
				b.AddFunction(wgslFogSource)
				return
			}
			b.AddFunction(wgslFogStubSource)
		},
	}
}
