package feature

import "testing"

func noopInject(Builder, Config, Variant) {}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Definition{ID: "fog", Inject: noopInject}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(Definition{ID: "fog", Inject: noopInject}); err == nil {
		t.Error("expected duplicate-ID error")
	}
}

func TestRegisterValidatesDefinition(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Definition{Inject: noopInject}); err == nil {
		t.Error("expected missing-ID error")
	}
	if err := r.Register(Definition{ID: "x"}); err == nil {
		t.Error("expected missing-inject error")
	}
	bad := Definition{
		ID:     "y",
		Inject: noopInject,
		Params: []ParamSpec{{Key: "k", Kind: ParamFloat, Default: BoolValue(true)}},
	}
	if err := r.Register(bad); err == nil {
		t.Error("expected default-kind mismatch error")
	}
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry(WithFeatures(
		Definition{ID: "alpha", Inject: noopInject},
		Definition{ID: "beta", Inject: noopInject},
		Definition{ID: "gamma", Inject: noopInject},
	))
	all := r.All()
	want := []string{"alpha", "beta", "gamma"}
	if len(all) != len(want) {
		t.Fatalf("got %d features, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("feature %d = %q, want %q", i, all[i].ID, id)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	r := NewRegistry(WithFeature(Definition{
		ID:     "lighting",
		Inject: noopInject,
		Params: []ParamSpec{
			{Key: "intensity", Kind: ParamFloat, Default: FloatValue(1.5)},
			{Key: "enabled", Kind: ParamBool, Default: BoolValue(true)},
		},
	}))
	cfg := r.DefaultConfig()
	if cfg.Mode != RenderModeDirect {
		t.Errorf("default mode = %v, want direct", cfg.Mode)
	}
	if v, ok := cfg.Param("lighting", "intensity"); !ok || v.Float() != 1.5 {
		t.Errorf("intensity default = %v, want 1.5", v.Float())
	}
	if v, ok := cfg.Param("lighting", "enabled"); !ok || !v.Bool() {
		t.Error("enabled default = false, want true")
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	var cfg Config
	cfg.Set("fog", "density", FloatValue(0.2))
	cp := cfg.Clone()
	cp.Set("fog", "density", FloatValue(9))
	if v, _ := cfg.Param("fog", "density"); v.Float() != 0.2 {
		t.Error("Clone shared the parameter tree")
	}
}

func TestConfigMergeLastWriteWins(t *testing.T) {
	var base Config
	base.Set("fog", "density", FloatValue(0.2))
	base.Set("fog", "color", ColorValue(1, 1, 1))

	var patch Config
	patch.SetMode(RenderModePathTracing)
	patch.Set("fog", "density", FloatValue(0.7))

	merged := base.Merge(patch)
	if merged.Mode != RenderModePathTracing {
		t.Errorf("merged mode = %v, want pathtracing", merged.Mode)
	}
	if v, _ := merged.Param("fog", "density"); v.Float() != 0.7 {
		t.Errorf("density = %v, want patched 0.7", v.Float())
	}
	if v, _ := merged.Param("fog", "color"); v.Vec3() != [3]float64{1, 1, 1} {
		t.Error("merge dropped an unpatched parameter")
	}
	if v, _ := base.Param("fog", "density"); v.Float() != 0.2 {
		t.Error("merge mutated the receiver")
	}
}

func TestConfigMergeKeepsModeForParamsOnlyPatch(t *testing.T) {
	var base Config
	base.SetMode(RenderModePathTracing)
	base.Set("fog", "density", FloatValue(0.2))

	var patch Config
	patch.Set("fog", "density", FloatValue(0.7))

	merged := base.Merge(patch)
	if merged.Mode != RenderModePathTracing {
		t.Errorf("merged mode = %v, want pathtracing preserved", merged.Mode)
	}

	var back Config
	back.SetMode(RenderModeDirect)
	if m := merged.Merge(back); m.Mode != RenderModeDirect {
		t.Errorf("explicit mode patch = %v, want direct", m.Mode)
	}
}

func TestConfigFingerprintDeterministic(t *testing.T) {
	build := func() Config {
		var c Config
		c.Set("fog", "density", FloatValue(0.25))
		c.Set("lighting", "intensity", FloatValue(2))
		c.Set("coloring", "palette", EnumValue("sunset"))
		return c
	}
	a, b := build(), build()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal configs produced different fingerprints")
	}

	c := build()
	c.Set("fog", "density", FloatValue(0.26))
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different configs produced equal fingerprints")
	}
}

func TestParamValueAccessorsToleratesMismatch(t *testing.T) {
	v := FloatValue(3)
	if v.Bool() || v.Int() != 0 || v.Enum() != "" {
		t.Error("mismatched accessors should return zero values")
	}
	if v.Float() != 3 {
		t.Errorf("Float() = %v, want 3", v.Float())
	}
}
