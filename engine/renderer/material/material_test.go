package material

import (
	"errors"
	"strconv"
	"testing"

	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/composer"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// countingComposer wraps a real composer and records how many times each mode
// was built.
type countingComposer struct {
	inner  composer.Composer
	builds map[feature.RenderMode]int
	fail   bool
}

func (c *countingComposer) Build(v feature.Variant, cfg feature.Config) (string, error) {
	if c.fail {
		return "", errors.New("forced failure")
	}
	c.builds[cfg.Mode]++
	return c.inner.Build(v, cfg)
}

func newTestCache() (*countingComposer, Cache) {
	entry := feature.Definition{
		ID: "entry",
		Inject: func(b feature.Builder, cfg feature.Config, v feature.Variant) {
			if cfg.Mode == feature.RenderModePathTracing {
				b.AddFunction("fn integrate() -> f32 { return 1.0; }")
			}
			b.SetEntryPoint("@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }")
		},
	}
	cc := &countingComposer{
		inner: composer.NewComposer(
			composer.WithRegistry(feature.NewRegistry(feature.WithFeature(entry))),
			composer.WithGlobalDefine(composer.GlobalDefine{
				Name: "DETAIL_STEPS",
				Derive: func(cfg feature.Config) string {
					return strconv.Itoa(cfg.ParamOr("entry", "steps", feature.IntValue(64)).Int())
				},
			}),
		),
		builds: map[feature.RenderMode]int{},
	}
	return cc, NewCache(WithComposer(cc), WithUniformSet(uniform.NewSchema().NewSet()))
}

func TestUpdateConfigCompilesOnlyActiveMode(t *testing.T) {
	cc, cache := newTestCache()
	if err := cache.UpdateConfig(feature.Config{Mode: feature.RenderModeDirect}); err != nil {
		t.Fatal(err)
	}
	if cc.builds[feature.RenderModeDirect] != 1 {
		t.Errorf("direct builds = %d, want 1", cc.builds[feature.RenderModeDirect])
	}
	if cc.builds[feature.RenderModePathTracing] != 0 {
		t.Errorf("pathtracing builds = %d, want 0 until requested", cc.builds[feature.RenderModePathTracing])
	}

	// The inactive slot is dirty and has no source yet.
	pt := cache.(*cacheImpl).slot(feature.RenderModePathTracing)
	if !pt.dirty || pt.source != "" {
		t.Error("pathtracing slot should be dirty with no assigned source")
	}
}

func TestLazyDualCompile(t *testing.T) {
	cc, cache := newTestCache()
	if err := cache.UpdateConfig(feature.Config{Mode: feature.RenderModeDirect}); err != nil {
		t.Fatal(err)
	}

	m, err := cache.Material(feature.RenderModePathTracing)
	if err != nil {
		t.Fatal(err)
	}
	if m.Source() == "" {
		t.Error("first Material call did not compile the dirty slot")
	}
	if cc.builds[feature.RenderModePathTracing] != 1 {
		t.Errorf("pathtracing builds = %d, want exactly 1", cc.builds[feature.RenderModePathTracing])
	}

	// A second immediate call performs no further compilation.
	if _, err := cache.Material(feature.RenderModePathTracing); err != nil {
		t.Fatal(err)
	}
	if cc.builds[feature.RenderModePathTracing] != 1 {
		t.Errorf("second call recompiled: builds = %d", cc.builds[feature.RenderModePathTracing])
	}
}

func TestHashMatchSkipsReassignment(t *testing.T) {
	_, cache := newTestCache()
	cfg := feature.Config{Mode: feature.RenderModeDirect}
	cfg.Set("entry", "cosmetic", feature.FloatValue(1))
	if err := cache.UpdateConfig(cfg); err != nil {
		t.Fatal(err)
	}
	m, _ := cache.Material(feature.RenderModeDirect)
	gen := m.Generation()
	hash := m.ContentHash()

	// A structurally equal config composes identical source; the slot must
	// not be reassigned or reflagged.
	if err := cache.UpdateConfig(cfg.Clone()); err != nil {
		t.Fatal(err)
	}
	m, _ = cache.Material(feature.RenderModeDirect)
	if m.Generation() != gen {
		t.Errorf("generation moved from %d to %d on identical content", gen, m.Generation())
	}
	if m.ContentHash() != hash {
		t.Error("content hash changed for identical config")
	}
}

func TestModesProduceIndependentSlots(t *testing.T) {
	_, cache := newTestCache()
	if err := cache.UpdateConfig(feature.Config{Mode: feature.RenderModeDirect}); err != nil {
		t.Fatal(err)
	}
	d, _ := cache.Material(feature.RenderModeDirect)
	p, _ := cache.Material(feature.RenderModePathTracing)
	if d.ContentHash() == p.ContentHash() {
		t.Error("modes with different composed source share a content hash")
	}
	if cache.ActiveMode() != feature.RenderModeDirect {
		t.Errorf("active mode = %v, want direct", cache.ActiveMode())
	}
	if cache.ActiveSource() != d.Source() {
		t.Error("ActiveSource does not match the active slot")
	}
}

func TestCompileFailureKeepsPreviousSource(t *testing.T) {
	cc, cache := newTestCache()
	if err := cache.UpdateConfig(feature.Config{Mode: feature.RenderModeDirect}); err != nil {
		t.Fatal(err)
	}
	m, _ := cache.Material(feature.RenderModeDirect)
	prev := m.Source()

	cc.fail = true
	if err := cache.UpdateConfig(feature.Config{Mode: feature.RenderModeDirect}); err == nil {
		t.Fatal("expected a composition error")
	}
	m, _ = cache.Material(feature.RenderModeDirect)
	if m.Source() != prev {
		t.Error("failed compile replaced the previous source")
	}
}

func TestSharedUniformSet(t *testing.T) {
	set := uniform.NewSchema(uniform.WithDefinition(
		uniform.Definition{Name: "uTime", Type: uniform.TypeFloat, Default: uniform.Float(0)},
	)).NewSet()
	cache := NewCache(WithUniformSet(set))
	if cache.UniformSet() != set {
		t.Error("cache does not share the supplied uniform set by reference")
	}
}
