package fractal

import (
	"strings"
	"testing"

	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/composer"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

func buildComposer() composer.Composer {
	return composer.NewComposer(
		composer.WithRegistry(NewRegistry()),
		composer.WithSchema(Schema()),
		composer.WithGlobalDefines(GlobalDefines()...),
	)
}

func defaultConfig() feature.Config {
	return NewRegistry().DefaultConfig()
}

func TestBuildAllVariants(t *testing.T) {
	c := buildComposer()
	cfg := defaultConfig()
	for _, v := range []feature.Variant{feature.VariantMain, feature.VariantPhysics, feature.VariantHistogram} {
		t.Run(v.String(), func(t *testing.T) {
			src, err := c.Build(v, cfg)
			if err != nil {
				t.Fatal(err)
			}
			for _, sym := range []string{"fn formula_de", "fn march", "fn shade", "fn soft_shadow", "fn palette_color", "fn apply_fog", "fn fs_main"} {
				if !strings.Contains(src, sym) {
					t.Errorf("variant %s missing symbol %s", v, sym)
				}
			}
		})
	}
}

func TestPhysicsVariantIsDistanceOnly(t *testing.T) {
	c := buildComposer()
	src, err := c.Build(feature.VariantPhysics, defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "d = 1000.0;") {
		t.Error("physics entry missing the miss sentinel")
	}
	if strings.Contains(src, "gradient_tex") {
		t.Error("physics variant must not reference the gradient texture")
	}
	// The probe variant carries the lighting stub, not the lit loop.
	if strings.Contains(src, "soft_shadow(p + n") {
		t.Error("physics variant contains the lit shading loop")
	}
}

func TestDefinesDeriveFromConfig(t *testing.T) {
	c := buildComposer()
	cfg := defaultConfig()
	cfg.Set(FeatureRaymarch, "steps", feature.IntValue(512))
	cfg.Set(FeatureFormula, "type", feature.EnumValue(FormulaMandelbox))
	cfg.Set(FeatureLighting, "count", feature.IntValue(3))

	src, err := c.Build(feature.VariantMain, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"const MAX_MARCH_STEPS = 512;",
		"const FORMULA_ID = 2;",
		"const LIGHT_COUNT = 3;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestLightCountClamped(t *testing.T) {
	cfg := defaultConfig()
	cfg.Set(FeatureLighting, "count", feature.IntValue(99))
	for _, gd := range GlobalDefines() {
		if gd.Name == "LIGHT_COUNT" {
			if got := gd.Derive(cfg); got != "8" {
				t.Errorf("LIGHT_COUNT = %s, want clamped to 8", got)
			}
		}
	}
}

func TestShadowsDisabledInjectsStub(t *testing.T) {
	c := buildComposer()
	cfg := defaultConfig()
	cfg.Set(FeatureShadows, "enabled", feature.BoolValue(false))
	src, err := c.Build(feature.VariantMain, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "fn soft_shadow") {
		t.Error("disabled shadows dropped the symbol instead of stubbing it")
	}
	if !strings.Contains(src, "const SHADOW_STEPS = 0;") {
		t.Error("disabled shadows should pin SHADOW_STEPS to 0")
	}
	if strings.Contains(src, "params.uShadowSoftness * d / t") {
		t.Error("disabled shadows still carry the sampling loop")
	}
}

func TestRenderModesComposeDistinctSources(t *testing.T) {
	c := buildComposer()

	direct := defaultConfig()
	direct.SetMode(feature.RenderModeDirect)
	directSrc, err := c.Build(feature.VariantMain, direct)
	if err != nil {
		t.Fatal(err)
	}

	pt := defaultConfig()
	pt.SetMode(feature.RenderModePathTracing)
	ptSrc, err := c.Build(feature.VariantMain, pt)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(directSrc, "const PATH_TRACING = 0;") {
		t.Error("direct source missing PATH_TRACING = 0")
	}
	if !strings.Contains(ptSrc, "const PATH_TRACING = 1;") {
		t.Error("pathtracing source missing PATH_TRACING = 1")
	}
	if !strings.Contains(ptSrc, "fn ambient_occlusion") {
		t.Error("pathtracing source missing the stochastic occlusion sampler")
	}
	if directSrc == ptSrc {
		t.Error("the two render modes composed identical sources")
	}
}

func TestSyncUniformsWritesConfigParams(t *testing.T) {
	set := Schema().NewSet()
	cfg := defaultConfig()
	cfg.Set(FeatureFormula, "power", feature.FloatValue(2))
	cfg.Set(FeatureRaymarch, "detail", feature.FloatValue(0.002))
	cfg.Set(FeatureFog, "density", feature.FloatValue(0.3))
	cfg.Set(FeatureFog, "color", feature.ColorValue(0.1, 0.2, 0.3))

	if err := SyncUniforms(cfg, set); err != nil {
		t.Fatal(err)
	}
	if v, _ := set.Get("uPower"); v.Float64() != 2 {
		t.Errorf("uPower = %v, want 2", v.Float64())
	}
	if v, _ := set.Get("uDetail"); v.Float64() != 0.002 {
		t.Errorf("uDetail = %v, want 0.002", v.Float64())
	}
	if v, _ := set.Get("uFog"); v.Components()[3] != 0.3 {
		t.Errorf("uFog.a = %v, want 0.3", v.Components()[3])
	}
}

func TestSyncUniformsSkipsUndeclaredKeys(t *testing.T) {
	set := uniform.NewSchema(uniform.WithDefinitions(
		uniform.Definition{Name: "uPower", Type: uniform.TypeFloat, Default: uniform.Float(8)},
	)).NewSet()
	cfg := defaultConfig()
	cfg.Set(FeatureFormula, "power", feature.FloatValue(3))

	if err := SyncUniforms(cfg, set); err != nil {
		t.Fatal(err)
	}
	if v, _ := set.Get("uPower"); v.Float64() != 3 {
		t.Errorf("uPower = %v, want 3", v.Float64())
	}
}

func TestFormulaVisibilityPredicates(t *testing.T) {
	var julia, boxScale feature.ParamSpec
	for _, p := range formulaFeature().Params {
		switch p.Key {
		case "juliaC":
			julia = p
		case "boxScale":
			boxScale = p
		}
	}
	cfg := defaultConfig()
	if julia.VisibleWhen(cfg) {
		t.Error("juliaC visible for the default mandelbulb formula")
	}
	cfg.Set(FeatureFormula, "type", feature.EnumValue(FormulaJulia))
	if !julia.VisibleWhen(cfg) {
		t.Error("juliaC hidden for the julia formula")
	}
	if boxScale.VisibleWhen(cfg) {
		t.Error("boxScale visible for the julia formula")
	}
}
