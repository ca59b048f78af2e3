package engine

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/events"
	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/fractal"
	"github.com/gamazama/GMT-fractals-sub005/engine/gradient"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/pipeline"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// captureRenderer is a GPU-less Renderer that records registered pipelines so
// tests can observe which fragment sources the engine binds.
type captureRenderer struct {
	pipelines     map[string]pipeline.Pipeline
	registrations int
}

func newCaptureRenderer() *captureRenderer {
	return &captureRenderer{pipelines: map[string]pipeline.Pipeline{}}
}

func (r *captureRenderer) Pipeline(key string) pipeline.Pipeline {
	return r.pipelines[key]
}

func (r *captureRenderer) RegisterPipeline(p pipeline.Pipeline) error {
	r.pipelines[p.PipelineKey()] = p
	r.registrations++
	return nil
}

func (r *captureRenderer) InitResources(uint64, common.TextureStagingData) error { return nil }
func (r *captureRenderer) WriteUniforms([]byte)                                 {}
func (r *captureRenderer) SetGradient(common.TextureStagingData) error          { return nil }
func (r *captureRenderer) Resize(int, int)                                      {}
func (r *captureRenderer) Size() (int, int)                                     { return 1280, 720 }
func (r *captureRenderer) RenderFrame(string, bool) error                       { return nil }
func (r *captureRenderer) Present()                                             {}
func (r *captureRenderer) RenderProbe(string) error                             { return nil }
func (r *captureRenderer) ProbePixel(float64, float64) ([4]float32, error)      { return [4]float32{}, nil }
func (r *captureRenderer) ProbeSize() (int, int)                                { return 256, 144 }
func (r *captureRenderer) RenderTile(string, int, int) ([]byte, error)          { return nil, nil }
func (r *captureRenderer) SetPresentMode(renderer.PresentMode)                  {}
func (r *captureRenderer) Release()                                             {}

var _ renderer.Renderer = &captureRenderer{}

// newHeadless builds an engine without a window or GPU renderer, which is all
// the event, accumulation and compilation bookkeeping needs.
func newHeadless(t *testing.T, options ...EngineBuilderOption) Engine {
	t.Helper()
	return NewEngine(options...)
}

func TestUniformEventResetsAccumulation(t *testing.T) {
	e := newHeadless(t)
	e.Update(0.016)

	e.Accumulation().Advance()
	e.Accumulation().Advance()
	if idx := e.Accumulation().SampleIndex(); idx != 2 {
		t.Fatalf("sample index = %d, want 2", idx)
	}

	e.Bus().Publish(events.UniformWrite{Key: "uPower", Value: uniform.Float(9)})
	e.Update(0.016)

	if !e.Accumulation().ResetPending() {
		t.Fatal("uniform write did not queue an accumulation reset")
	}
	if s := e.Accumulation().Advance(); s.Index != 0 {
		t.Fatalf("sample index after reset = %d, want 0", s.Index)
	}

	v, ok := e.Materials().UniformSet().Get("uPower")
	if !ok || v.Float64() != 9 {
		t.Fatalf("uPower = %v (ok=%v), want 9", v, ok)
	}
}

func TestNoResetUniformLeavesCounter(t *testing.T) {
	e := newHeadless(t)
	e.Update(0.016)

	e.Accumulation().Advance()
	e.Accumulation().Advance()

	e.Bus().Publish(events.UniformWrite{Key: "uColorOffset", Value: uniform.Float(0.25), NoReset: true})
	e.Update(0.016)

	if e.Accumulation().ResetPending() {
		t.Fatal("noReset uniform write queued an accumulation reset")
	}
	if s := e.Accumulation().Advance(); s.Index != 2 {
		t.Fatalf("sample index = %d, want 2", s.Index)
	}
}

func TestTeleportRoundTrip(t *testing.T) {
	e := newHeadless(t)

	offset := precision.SplitVec(common.Vec3{X: 1e10 + 0.25, Y: -3.75, Z: 42.0625})
	in := precision.CameraSnapshot{
		LocalPosition:        common.Vec3{X: 0.125, Y: -0.5, Z: 0.25},
		Rotation:             common.QuatFromAxisAngle(common.Vec3{Y: 1}, 0.7),
		WorldOffset:          offset,
		LastMeasuredDistance: 0.042,
	}

	e.Bus().Publish(events.CameraTeleport{Snapshot: in})
	e.Update(0.016)

	out := e.Snapshot()
	if d := out.LocalPosition.Sub(in.LocalPosition).Length(); d > 1e-12 {
		t.Fatalf("local position drifted by %g", d)
	}
	if got, want := out.WorldOffset.Value(), in.WorldOffset.Value(); got.Sub(want).Length() > 1e-6 {
		t.Fatalf("world offset = %v, want %v", got, want)
	}
	if math.Abs(out.WorldOffset.Low().X-in.WorldOffset.Low().X) > 1e-12 {
		t.Fatalf("low residual not preserved: %g vs %g", out.WorldOffset.Low().X, in.WorldOffset.Low().X)
	}
	if ang := out.Rotation.AngleTo(in.Rotation); ang > 1e-9 {
		t.Fatalf("rotation drifted by %g rad", ang)
	}
	if out.LastMeasuredDistance != in.LastMeasuredDistance {
		t.Fatalf("measured distance = %g, want %g", out.LastMeasuredDistance, in.LastMeasuredDistance)
	}
	if !e.Accumulation().ResetPending() {
		t.Fatal("teleport did not queue an accumulation reset")
	}
}

func TestConfigPatchDebounceLastWriteWins(t *testing.T) {
	e := newHeadless(t, WithRecompileDebounce(20*time.Millisecond))
	e.Update(0.016)

	patch := func(steps int) feature.Config {
		var cfg feature.Config
		cfg.Set(fractal.FeatureRaymarch, "steps", feature.IntValue(steps))
		return cfg
	}

	e.Bus().Publish(events.ConfigPatch{Patch: patch(128)})
	e.Bus().Publish(events.ConfigPatch{Patch: patch(64)})
	e.Update(0.016)

	// Inside the debounce window nothing has compiled yet.
	if src := e.CompiledFragmentShader(); src != "" {
		t.Fatal("recompilation ran before the debounce window elapsed")
	}

	time.Sleep(30 * time.Millisecond)
	e.Update(0.016)

	src := e.CompiledFragmentShader()
	if !strings.Contains(src, "const MAX_MARCH_STEPS = 64;") {
		t.Fatal("compiled source does not carry the last patched step count")
	}
	if strings.Contains(src, "const MAX_MARCH_STEPS = 128;") {
		t.Fatal("superseded intermediate config was compiled")
	}
}

func TestUniformWriteBypassesDebounce(t *testing.T) {
	e := newHeadless(t, WithRecompileDebounce(time.Hour))
	e.Update(0.016)

	var cfg feature.Config
	cfg.Set(fractal.FeatureRaymarch, "steps", feature.IntValue(512))
	e.Bus().Publish(events.ConfigPatch{Patch: cfg})
	e.Bus().Publish(events.UniformWrite{Key: "uBailout", Value: uniform.Float(16)})
	e.Update(0.016)

	v, ok := e.Materials().UniformSet().Get("uBailout")
	if !ok || v.Float64() != 16 {
		t.Fatalf("uBailout = %v (ok=%v), want 16 applied despite pending recompile", v, ok)
	}
}

func TestCompileFailureIsReportedNotFatal(t *testing.T) {
	// An empty registry composes no entry point, so every recompile fails.
	e := newHeadless(t,
		WithRegistry(feature.NewRegistry()),
		WithRecompileDebounce(0),
	)

	var failures []events.ShaderFailure
	e.Bus().Subscribe(func(ev events.Event) {
		if f, ok := ev.(events.ShaderFailure); ok {
			failures = append(failures, f)
		}
	})

	e.Bus().Publish(events.ConfigPatch{Patch: feature.Config{}})
	e.Update(0.016)
	// The failed compile must not poison later frames.
	e.Update(0.016)

	if len(failures) != 1 {
		t.Fatalf("got %d shader failures, want 1", len(failures))
	}
	if failures[0].Err == nil {
		t.Fatal("shader failure carried no error")
	}
}

func TestCompileReportAboveThreshold(t *testing.T) {
	e := newHeadless(t,
		WithRecompileDebounce(0),
		WithCompileReportThreshold(0),
	)
	e.Update(0.016)

	var reports []events.CompileReport
	e.Bus().Subscribe(func(ev events.Event) {
		if r, ok := ev.(events.CompileReport); ok {
			reports = append(reports, r)
		}
	})

	var cfg feature.Config
	cfg.Set(fractal.FeatureRaymarch, "iterations", feature.IntValue(20))
	e.Bus().Publish(events.ConfigPatch{Patch: cfg})
	e.Update(0.016)

	if len(reports) != 1 {
		t.Fatalf("got %d compile reports, want 1", len(reports))
	}
}

func TestGradientChangeResetsAccumulation(t *testing.T) {
	e := newHeadless(t)
	e.Update(0.016)
	e.Accumulation().Advance()

	e.Bus().Publish(events.GradientChange{Stops: []gradient.Stop{
		{Position: 0, Color: [3]float64{0, 0, 0}},
		{Position: 1, Color: [3]float64{1, 1, 1}},
	}})
	e.Update(0.016)

	if !e.Accumulation().ResetPending() {
		t.Fatal("gradient change did not queue an accumulation reset")
	}
}

func TestOffsetShiftResetThreshold(t *testing.T) {
	e := newHeadless(t)
	e.Update(0.016)

	e.Bus().Publish(events.OffsetShift{DX: 1e-13})
	e.Update(0.016)
	if e.Accumulation().ResetPending() {
		t.Fatal("negligible offset drift queued an accumulation reset")
	}

	e.Bus().Publish(events.OffsetShift{DX: 0.5})
	e.Update(0.016)
	if !e.Accumulation().ResetPending() {
		t.Fatal("offset drift did not queue an accumulation reset")
	}
	if got := e.Space().Offset().Value().X; math.Abs(got-(0.5+1e-13)) > 1e-15 {
		t.Fatalf("offset X = %g, want %g", got, 0.5+1e-13)
	}
}

func TestCameraAbsorbZeroesLocalPosition(t *testing.T) {
	e := newHeadless(t)
	e.Camera().SetPosition(common.Vec3{X: 1, Y: 2, Z: 3})

	e.Bus().Publish(events.CameraAbsorb{LocalPosition: e.Camera().Position()})
	e.Update(0.016)

	if p := e.Camera().Position(); p.Length() != 0 {
		t.Fatalf("local position = %v, want origin", p)
	}
	if o := e.Space().Offset().Value(); o.Sub(common.Vec3{X: 1, Y: 2, Z: 3}).Length() > 1e-12 {
		t.Fatalf("offset = %v, want (1,2,3)", o)
	}
}

func TestMeasureDistanceHeadlessIsSentinel(t *testing.T) {
	e := newHeadless(t)
	if d := e.MeasureDistanceAtScreenPoint(0, 0); d != -1 {
		t.Fatalf("headless probe distance = %g, want -1", d)
	}
	if _, ok := e.PickWorldPosition(0, 0); ok {
		t.Fatal("headless pick reported a hit")
	}
}

func TestModeSwitchRebindsMainPipeline(t *testing.T) {
	rend := newCaptureRenderer()
	e := NewEngine(WithRenderer(rend), WithRecompileDebounce(0))

	main := rend.Pipeline("main")
	if main == nil {
		t.Fatal("initial compile registered no main pipeline")
	}
	if !strings.Contains(main.FragmentSource(), "const PATH_TRACING = 0;") {
		t.Fatal("initial main pipeline is not the direct program")
	}

	var patch feature.Config
	patch.SetMode(feature.RenderModePathTracing)
	e.Bus().Publish(events.ConfigPatch{Patch: patch})
	e.Update(0.016)

	main = rend.Pipeline("main")
	if !strings.Contains(main.FragmentSource(), "const PATH_TRACING = 1;") {
		t.Fatal("mode switch left the direct program bound")
	}

	// Switching back must rebind again even though both slots have compiled
	// once already.
	var back feature.Config
	back.SetMode(feature.RenderModeDirect)
	e.Bus().Publish(events.ConfigPatch{Patch: back})
	e.Update(0.016)

	main = rend.Pipeline("main")
	if !strings.Contains(main.FragmentSource(), "const PATH_TRACING = 0;") {
		t.Fatal("switching back left the pathtracing program bound")
	}
}

func TestUnchangedRecompileSkipsRebind(t *testing.T) {
	rend := newCaptureRenderer()
	e := NewEngine(WithRenderer(rend), WithRecompileDebounce(0))
	before := rend.registrations

	// A patch that changes nothing composes identical source; the bound
	// pipelines stay untouched.
	e.Bus().Publish(events.ConfigPatch{Patch: feature.Config{}})
	e.Update(0.016)

	if rend.registrations != before {
		t.Fatalf("no-op recompile re-registered pipelines (%d -> %d)", before, rend.registrations)
	}
}

func TestConfigPatchSyncsUniforms(t *testing.T) {
	e := newHeadless(t, WithRecompileDebounce(0))
	e.Update(0.016)

	var cfg feature.Config
	cfg.Set(fractal.FeatureFormula, "power", feature.FloatValue(2))
	cfg.Set(fractal.FeatureColoring, "offset", feature.FloatValue(0.4))
	e.Bus().Publish(events.ConfigPatch{Patch: cfg})
	e.Update(0.016)

	set := e.Materials().UniformSet()
	if v, ok := set.Get("uPower"); !ok || v.Float64() != 2 {
		t.Fatalf("uPower = %v (ok=%v), want patched value 2", v, ok)
	}
	if v, _ := set.Get("uColorOffset"); v.Float64() != 0.4 {
		t.Fatalf("uColorOffset = %v, want 0.4", v.Float64())
	}
}

func TestApplyPresetSyncsUniforms(t *testing.T) {
	e := newHeadless(t, WithRecompileDebounce(0))
	e.Update(0.016)

	p := e.CurrentPreset()
	p.Config.Set(fractal.FeatureFormula, "power", feature.FloatValue(3))
	if err := e.ApplyPreset(p); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}

	if v, ok := e.Materials().UniformSet().Get("uPower"); !ok || v.Float64() != 3 {
		t.Fatalf("uPower = %v (ok=%v), want preset value 3", v, ok)
	}
}

func TestPresetRoundTripThroughEngine(t *testing.T) {
	e := newHeadless(t, WithRecompileDebounce(0))
	e.Update(0.016)

	e.Bus().Publish(events.OffsetShift{DX: 12.75, DY: -3.5})
	e.Bus().Publish(events.UniformWrite{Key: "uPower", Value: uniform.Float(6)})
	e.Update(0.016)

	p := e.CurrentPreset()

	other := newHeadless(t, WithRecompileDebounce(0))
	if err := other.ApplyPreset(p); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}

	if got, want := other.Space().Offset().Value(), e.Space().Offset().Value(); got.Sub(want).Length() > 1e-9 {
		t.Fatalf("offset after preset restore = %v, want %v", got, want)
	}
	if other.CompiledFragmentShader() == "" {
		t.Fatal("preset application did not compile the material")
	}
}
