package engine

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/accum"
	"github.com/gamazama/GMT-fractals-sub005/engine/camera"
	"github.com/gamazama/GMT-fractals-sub005/engine/events"
	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/fractal"
	"github.com/gamazama/GMT-fractals-sub005/engine/gradient"
	"github.com/gamazama/GMT-fractals-sub005/engine/light"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
	"github.com/gamazama/GMT-fractals-sub005/engine/preset"
	"github.com/gamazama/GMT-fractals-sub005/engine/profiler"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/composer"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/material"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/pipeline"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
	"github.com/gamazama/GMT-fractals-sub005/engine/window"

	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline cache keys for the three live GPU programs.
const (
	mainPipelineKey  = "main"
	probePipelineKey = "probe"
	tilePipelineKey  = "tile"
)

const (
	// defaultRecompileDebounce is how long a shader-affecting config change
	// waits for further changes before one recompilation runs with the latest
	// accumulated config.
	defaultRecompileDebounce = 150 * time.Millisecond

	// defaultCompileThreshold is the minimum compile duration worth reporting
	// to collaborators as a visible "compiling" indicator.
	defaultCompileThreshold = 100 * time.Millisecond

	// offsetResetEpsilon is the squared offset delta below which a drift event
	// does not invalidate accumulated samples.
	offsetResetEpsilon = 1e-24

	// Probe distances outside [minProbeDistance, probeMissSentinel) are not
	// surface hits; probeFallbackDistance seeds speed scaling when nothing
	// valid was ever measured.
	minProbeDistance      = 1e-7
	probeMissSentinel     = 1000.0
	probeFallbackDistance = 3.5
)

// engine implements the Engine interface.
// Owns every rendering subsystem and coordinates the tick and render threads.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	tickCallback     func(deltaTime float32)
	renderFrameLimit time.Duration

	bus        events.Bus
	space      precision.PrecisionSpace
	cam        camera.Camera
	controller camera.CameraController
	registry   feature.Registry
	schema     uniform.Schema
	comp       composer.Composer
	materials  material.Cache
	accumul    accum.Pipeline
	lights     light.Rig
	buckets    accum.BucketRenderer
	rend       renderer.Renderer

	// config is the last successfully compiled composition config. pending
	// holds the newest patched config while the debounce window is open;
	// last-write-wins, no intermediate recompiles.
	config      feature.Config
	pending     feature.Config
	hasPending  bool
	recompileAt time.Time
	debounce    time.Duration

	compileThreshold time.Duration
	smoothingEnabled bool
	interacting      bool

	// boundHash is the content hash of the fragment source the surface
	// pipeline was last built from. Generations are per-slot counters and
	// collide across render modes; the hash identifies the bound source itself.
	boundHash    uint64
	lastUniforms uint64

	// gradientLayers holds one stop list per LUT row; row 0 is the surface
	// palette persisted in presets.
	gradientLayers       [][]gradient.Stop
	lastMeasuredDistance float64
	clock                float64
	frameError           error
}

// Engine is the main entry point for the fractal renderer. It composes the
// precision space, camera, shader composition, material cache, accumulation
// and GPU renderer behind one update/render surface, and consumes the typed
// event channel collaborators publish configuration through.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Bus returns the inbound event channel. Collaborators publish
	// configuration events here; the engine drains the queue once per frame.
	//
	// Returns:
	//   - events.Bus: the event bus
	Bus() events.Bus

	// Camera returns the camera whose pose the engine renders from.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Controller returns the navigation controller translating input deltas
	// into camera pose updates.
	//
	// Returns:
	//   - camera.CameraController: the controller
	Controller() camera.CameraController

	// Space returns the precision space holding the split world offset.
	//
	// Returns:
	//   - precision.PrecisionSpace: the space
	Space() precision.PrecisionSpace

	// Materials returns the material cache owning the two live fragment
	// programs.
	//
	// Returns:
	//   - material.Cache: the cache
	Materials() material.Cache

	// Accumulation returns the progressive accumulation pipeline.
	//
	// Returns:
	//   - accum.Pipeline: the pipeline
	Accumulation() accum.Pipeline

	// Lights returns the light rig uploaded to the shader's light array.
	//
	// Returns:
	//   - light.Rig: the rig
	Lights() light.Rig

	// Renderer returns the GPU renderer, or nil when running headless.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Update advances one frame of bookkeeping: drains the event queue in
	// publish order, runs an elapsed debounce recompilation, applies camera
	// pose smoothing, and synchronizes the per-frame uniforms. Uniform writes
	// observed here are visible to the next Render call.
	//
	// Parameters:
	//   - dt: frame delta time in seconds
	Update(dt float64)

	// Render issues the draw calls for the currently accumulated state: one
	// accumulating fullscreen pass plus the distance-probe pass, then
	// presents. Returns an error when no renderer is attached or the surface
	// is unavailable.
	//
	// Returns:
	//   - error: if rendering fails
	Render() error

	// SetInteracting marks whether the user is actively manipulating the
	// view. While interacting, accumulation restarts every frame so the image
	// stays responsive instead of converging against a moving target.
	//
	// Parameters:
	//   - interacting: true while input is being applied
	SetInteracting(interacting bool)

	// MeasureDistanceAtScreenPoint reads the distance-probe buffer at a
	// normalized device coordinate. Values at or beyond the 1000-unit
	// sentinel mean no surface was hit; -1 means the probe could not be read.
	// Trusted measurements also feed camera speed scaling.
	//
	// Parameters:
	//   - ndcX, ndcY: coordinates in [-1, 1], y up
	//
	// Returns:
	//   - float64: the marched distance, the miss sentinel, or -1
	MeasureDistanceAtScreenPoint(ndcX, ndcY float64) float64

	// PickWorldPosition probes the distance under a screen point and
	// reconstructs the full-precision world position of the surface there.
	//
	// Parameters:
	//   - ndcX, ndcY: coordinates in [-1, 1], y up
	//
	// Returns:
	//   - common.Vec3: the world-anchored position
	//   - bool: false when no surface was hit
	PickWorldPosition(ndcX, ndcY float64) (common.Vec3, bool)

	// CompiledFragmentShader returns the fragment source of the currently
	// linked main program, for diagnostic introspection.
	//
	// Returns:
	//   - string: the WGSL fragment source
	CompiledFragmentShader() string

	// ProbeFragmentShader composes and returns the distance-probe variant's
	// fragment source for the active config.
	//
	// Returns:
	//   - string: the WGSL fragment source
	//   - error: if composition fails
	ProbeFragmentShader() (string, error)

	// Snapshot captures the current camera state as the round-trippable
	// representation used by undo/redo, teleports and presets.
	//
	// Returns:
	//   - precision.CameraSnapshot: the snapshot
	Snapshot() precision.CameraSnapshot

	// ApplyPreset installs a persisted scene: camera teleport, feature config
	// (compiled immediately, not debounced), and gradient.
	//
	// Parameters:
	//   - p: the preset to install
	//
	// Returns:
	//   - error: if the config fails to compile
	ApplyPreset(p preset.Preset) error

	// CurrentPreset captures the live scene as a preset document.
	//
	// Returns:
	//   - preset.Preset: the captured preset
	CurrentPreset() preset.Preset

	// ExportImage renders the current scene at an arbitrary resolution using
	// bucketed tile rendering, converging each bucket before the next. The
	// interactive render state is untouched by a failure.
	//
	// Parameters:
	//   - width, height: the output dimensions in pixels
	//
	// Returns:
	//   - []byte: width*height*4 RGBA bytes, row-major
	//   - error: if rendering or allocation fails
	ExportImage(width, height int) ([]byte, error)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick. Use
	// this for input sampling and event publication; rendering happens on the
	// render thread.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the main engine loop (blocks until the window closes).
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple
	// times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine. Every subsystem not supplied through an option
// gets a default: the builtin fractal feature registry and uniform schema, a
// fresh precision space, camera, controller, material cache, accumulation
// pipeline and light rig. When a window is supplied the GPU renderer is
// created against it and the initial shaders are compiled.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		profiler:         profiler.NewProfiler(),
		engineTickRate:   time.Second / 60,
		debounce:         defaultRecompileDebounce,
		compileThreshold: defaultCompileThreshold,
		smoothingEnabled: true,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.bus == nil {
		e.bus = events.NewBus()
	}
	if e.space == nil {
		e.space = precision.NewPrecisionSpace()
	}
	if e.cam == nil {
		e.cam = camera.NewCamera()
	}
	if e.controller == nil {
		e.controller = camera.NewCameraController(e.cam)
	}
	if e.registry == nil {
		e.registry = fractal.NewRegistry()
	}
	if e.schema == nil {
		e.schema = fractal.Schema()
	}
	if e.comp == nil {
		e.comp = composer.NewComposer(
			composer.WithRegistry(e.registry),
			composer.WithSchema(e.schema),
			composer.WithGlobalDefines(fractal.GlobalDefines()...),
			composer.WithUniformBinding(0, renderer.BindingUniforms),
		)
	}
	if e.materials == nil {
		e.materials = material.NewCache(
			material.WithComposer(e.comp),
			material.WithUniformSet(e.schema.NewSet()),
		)
	}
	if e.accumul == nil {
		e.accumul = accum.NewPipeline()
	}
	if e.lights == nil {
		e.lights = light.NewRig(light.WithCapacity(fractal.MaxLights))
	}
	if e.buckets == nil {
		e.buckets = accum.NewBucketRenderer()
	}

	e.config = e.registry.DefaultConfig()
	e.lastMeasuredDistance = probeFallbackDistance

	if e.window != nil && e.rend == nil {
		e.rend = renderer.NewRenderer(renderer.BackendTypeWGPU, e.window)
	}
	if e.rend != nil {
		if err := e.initGraphics(); err != nil {
			panic(fmt.Sprintf("failed to initialize renderer resources: %v", err))
		}
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.rend != nil {
				e.rend.Resize(width, height)
			}
			set := e.materials.UniformSet()
			if err := set.Write("uResolution", uniform.Vec2(float64(width), float64(height))); err != nil {
				log.Printf("resize uniform write failed: %v", err)
			}
			e.accumul.RequestReset()
		})
	}

	return e
}

// initGraphics creates the shared GPU resources and compiles the initial
// shader set from the default config.
func (e *engine) initGraphics() error {
	set := e.materials.UniformSet()
	if err := e.rend.InitResources(uint64(len(set.Bytes())), gradient.BakeLayers(e.gradientLayers)); err != nil {
		return err
	}
	if e.window != nil {
		w, h := e.window.Width(), e.window.Height()
		if err := set.Write("uResolution", uniform.Vec2(float64(w), float64(h))); err != nil {
			return err
		}
	}
	if err := e.materials.UpdateConfig(e.config); err != nil {
		return err
	}
	return e.registerPipelines()
}

func (e *engine) Window() window.Window               { return e.window }
func (e *engine) Bus() events.Bus                     { return e.bus }
func (e *engine) Camera() camera.Camera               { return e.cam }
func (e *engine) Controller() camera.CameraController { return e.controller }
func (e *engine) Space() precision.PrecisionSpace     { return e.space }
func (e *engine) Materials() material.Cache           { return e.materials }
func (e *engine) Accumulation() accum.Pipeline        { return e.accumul }
func (e *engine) Lights() light.Rig                   { return e.lights }
func (e *engine) Renderer() renderer.Renderer         { return e.rend }

func (e *engine) SetInteracting(interacting bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interacting = interacting
}

func (e *engine) Update(dt float64) {
	e.clock += dt

	// Events first: camera events must land before the smoothing step runs
	// for the same frame.
	for _, ev := range e.bus.Drain() {
		e.handleEvent(ev)
	}

	// An elapsed debounce window performs exactly one recompilation with the
	// latest accumulated config.
	e.mu.Lock()
	due := e.hasPending && !time.Now().Before(e.recompileAt)
	var cfg feature.Config
	if due {
		cfg = e.pending
		e.hasPending = false
	}
	interacting := e.interacting
	e.mu.Unlock()
	if due {
		e.recompile(cfg)
	}

	target := e.cam.Pose()
	orbit := e.controller.Mode() == camera.ModeOrbit
	smoothed := e.space.UpdateSmoothing(target, dt, orbit, e.smoothingEnabled)

	// Any camera motion invalidates accumulated samples; so does active
	// interaction even when the pose momentarily holds still.
	if interacting || !e.space.Locked() {
		e.accumul.RequestReset()
	}

	if err := e.syncFrameUniforms(smoothed); err != nil {
		log.Printf("frame uniform sync failed: %v", err)
	}
}

// handleEvent applies one inbound event. Outbound diagnostics (ShaderFailure,
// CompileReport) pass through the queue untouched; subscribers already saw
// them at publish time.
func (e *engine) handleEvent(ev events.Event) {
	switch v := ev.(type) {
	case events.UniformWrite:
		if err := e.materials.UniformSet().Write(v.Key, v.Value); err != nil {
			log.Printf("uniform write %q rejected: %v", v.Key, err)
			return
		}
		if !v.NoReset {
			e.accumul.RequestReset()
		}
	case events.ConfigPatch:
		e.mu.Lock()
		base := e.config
		if e.hasPending {
			base = e.pending
		}
		e.pending = base.Merge(v.Patch)
		e.hasPending = true
		e.recompileAt = time.Now().Add(e.debounce)
		e.mu.Unlock()
	case events.GradientChange:
		if v.Layer < 0 {
			log.Printf("gradient layer %d rejected", v.Layer)
			return
		}
		for len(e.gradientLayers) <= v.Layer {
			e.gradientLayers = append(e.gradientLayers, nil)
		}
		e.gradientLayers[v.Layer] = append([]gradient.Stop(nil), v.Stops...)
		if e.rend != nil {
			if err := e.rend.SetGradient(gradient.BakeLayers(e.gradientLayers)); err != nil {
				log.Printf("gradient texture rebuild failed: %v", err)
			}
		}
		e.accumul.RequestReset()
	case events.OffsetShift:
		e.space.Move(v.DX, v.DY, v.DZ)
		if v.DX*v.DX+v.DY*v.DY+v.DZ*v.DZ > offsetResetEpsilon {
			e.accumul.RequestReset()
		}
	case events.OffsetSet:
		e.space.SetOffsetExact(v.Offset)
		e.accumul.RequestReset()
	case events.CameraAbsorb:
		e.space.AbsorbCamera(v.LocalPosition)
		e.cam.SetPosition(common.Vec3{})
	case events.CameraSnap:
		e.space.QueueSnap()
	case events.CameraTeleport:
		e.applyTeleport(v.Snapshot)
	case events.ResetAccumulation:
		e.accumul.RequestReset()
	}
}

// applyTeleport installs a snapshot as the authoritative camera state.
func (e *engine) applyTeleport(snap precision.CameraSnapshot) {
	pose := e.space.ApplyCameraState(snap)
	e.cam.SetPose(pose)
	e.controller.SetTargetDistance(snap.LastMeasuredDistance)
	e.controller.SyncFromCamera()
	if snap.LastMeasuredDistance >= minProbeDistance && snap.LastMeasuredDistance < probeMissSentinel {
		e.lastMeasuredDistance = snap.LastMeasuredDistance
	}
	e.accumul.RequestReset()
}

// syncFrameUniforms writes the smoothed camera basis, world offset high parts
// and clock into the shared uniform set, and resolves the light rig.
func (e *engine) syncFrameUniforms(pose precision.Pose) error {
	set := e.materials.UniformSet()

	right := pose.Rotation.Rotate(common.Vec3{X: 1})
	up := pose.Rotation.Rotate(common.Vec3{Y: 1})
	forward := pose.Rotation.Rotate(common.Vec3{Z: 1})

	high := e.space.Offset().High()
	writes := []struct {
		key string
		val uniform.Value
	}{
		{"uCameraPos", uniform.Vec3(pose.Position.X, pose.Position.Y, pose.Position.Z)},
		{"uCameraRight", uniform.Vec3(right.X, right.Y, right.Z)},
		{"uCameraUp", uniform.Vec3(up.X, up.Y, up.Z)},
		{"uCameraForward", uniform.Vec3(forward.X, forward.Y, forward.Z)},
		{"uOffsetHigh", uniform.Vec3(float64(high[0]), float64(high[1]), float64(high[2]))},
		{"uFov", uniform.Float(e.cam.Fov())},
		{"uTime", uniform.Float(e.clock)},
	}

	for _, w := range writes {
		if err := set.Write(w.key, w.val); err != nil {
			return err
		}
	}
	return e.lights.Apply(set, e.space.Offset(), pose)
}

// recompile performs one recompilation pass: the active material eagerly, the
// probe and tile pipelines alongside. On failure the previous program keeps
// rendering and the failure is reported; there is no automatic retry.
func (e *engine) recompile(cfg feature.Config) {
	start := time.Now()
	if err := e.materials.UpdateConfig(cfg); err != nil {
		e.bus.Publish(events.ShaderFailure{Mode: cfg.Mode, Err: err})
		return
	}
	e.config = cfg

	// Numeric parameters travel through the uniform buffer, not the compiled
	// source; push them now so the new config renders with its own values.
	if err := fractal.SyncUniforms(cfg, e.materials.UniformSet()); err != nil {
		log.Printf("config uniform sync failed: %v", err)
	}

	if e.rend != nil {
		if err := e.registerPipelines(); err != nil {
			e.bus.Publish(events.ShaderFailure{Mode: cfg.Mode, Err: err})
			return
		}
	}

	elapsed := time.Since(start)
	e.profiler.RecordCompile(elapsed)
	if elapsed >= e.compileThreshold {
		e.bus.Publish(events.CompileReport{Mode: cfg.Mode, Duration: elapsed})
	}
	e.accumul.RequestReset()
}

// registerPipelines rebuilds the GPU pipelines whose source is stale. A
// registration failure leaves the previous pipeline cached and rendering.
func (e *engine) registerPipelines() error {
	mat, err := e.materials.Material(e.materials.ActiveMode())
	if err != nil {
		return err
	}
	if mat.ContentHash() != e.boundHash || e.rend.Pipeline(mainPipelineKey) == nil {
		main := pipeline.NewPipeline(mainPipelineKey,
			pipeline.WithVertexSource(composer.FullscreenVertexSource, "vs_main"),
			pipeline.WithFragmentSource(mat.Source(), "fs_main"),
			pipeline.WithBlend(nil),
		)
		if err := e.rend.RegisterPipeline(main); err != nil {
			return err
		}

		tile := pipeline.NewPipeline(tilePipelineKey,
			pipeline.WithVertexSource(composer.FullscreenVertexSource, "vs_main"),
			pipeline.WithFragmentSource(mat.Source(), "fs_main"),
			pipeline.WithTargetFormat(wgpu.TextureFormatRGBA8Unorm),
		)
		if err := e.rend.RegisterPipeline(tile); err != nil {
			return err
		}

		probeSrc, err := e.comp.Build(feature.VariantPhysics, e.config)
		if err != nil {
			return err
		}
		probe := pipeline.NewPipeline(probePipelineKey,
			pipeline.WithVertexSource(composer.FullscreenVertexSource, "vs_main"),
			pipeline.WithFragmentSource(probeSrc, "fs_main"),
			pipeline.WithTargetFormat(wgpu.TextureFormatRGBA32Float),
		)
		if err := e.rend.RegisterPipeline(probe); err != nil {
			return err
		}

		e.boundHash = mat.ContentHash()
	}
	return nil
}

func (e *engine) Render() error {
	if e.rend == nil {
		return fmt.Errorf("no renderer attached")
	}
	if err := e.registerPipelines(); err != nil {
		// A failed lazy compile keeps the previous program on screen.
		e.bus.Publish(events.ShaderFailure{Mode: e.materials.ActiveMode(), Err: err})
	}

	// Reset applies before the jitter index is derived for this frame.
	sample := e.accumul.Advance()
	set := e.materials.UniformSet()
	if err := set.Write("uJitter", uniform.Vec2(sample.Jitter[0], sample.Jitter[1])); err != nil {
		return err
	}
	if err := set.Write("uSampleIndex", uniform.UInt(uint32(sample.Index))); err != nil {
		return err
	}

	if v := set.Version(); v != e.lastUniforms {
		e.rend.WriteUniforms(set.Bytes())
		e.lastUniforms = v
	}

	if err := e.rend.RenderFrame(mainPipelineKey, sample.Index > 0); err != nil {
		return err
	}
	e.rend.Present()
	return nil
}

func (e *engine) MeasureDistanceAtScreenPoint(ndcX, ndcY float64) float64 {
	if e.rend == nil {
		return -1
	}
	if err := e.rend.RenderProbe(probePipelineKey); err != nil {
		return -1
	}
	texel, err := e.rend.ProbePixel(ndcX, ndcY)
	if err != nil {
		return -1
	}

	d := float64(texel[0])
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return -1
	}
	// The controller filters untrusted values itself; feeding every positive
	// reading keeps the two trust policies in one place.
	e.controller.SetMeasuredDistance(d)
	if d >= minProbeDistance && d < probeMissSentinel {
		e.lastMeasuredDistance = d
	}
	return d
}

func (e *engine) PickWorldPosition(ndcX, ndcY float64) (common.Vec3, bool) {
	d := e.MeasureDistanceAtScreenPoint(ndcX, ndcY)
	if d < minProbeDistance || d >= probeMissSentinel {
		return common.Vec3{}, false
	}

	pose := e.space.SmoothedPose()
	right := pose.Rotation.Rotate(common.Vec3{X: 1})
	up := pose.Rotation.Rotate(common.Vec3{Y: 1})
	forward := pose.Rotation.Rotate(common.Vec3{Z: 1})

	w, h := e.rend.Size()
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	halfFov := math.Tan(e.cam.Fov() * 0.5)

	dir := forward.
		Add(right.Scale(ndcX * aspect * halfFov)).
		Add(up.Scale(ndcY * halfFov)).
		Normalized()
	local := pose.Position.Add(dir.Scale(d))
	return e.space.Offset().Value().Add(local), true
}

func (e *engine) CompiledFragmentShader() string {
	return e.materials.ActiveSource()
}

func (e *engine) ProbeFragmentShader() (string, error) {
	return e.comp.Build(feature.VariantPhysics, e.config)
}

func (e *engine) Snapshot() precision.CameraSnapshot {
	return e.space.UnifiedCameraState(e.cam.Position(), e.cam.Rotation(), e.lastMeasuredDistance)
}

func (e *engine) ApplyPreset(p preset.Preset) error {
	e.applyTeleport(p.Camera)

	// Preset configs compile immediately; the debounce exists to coalesce
	// interactive slider drags, not document loads.
	e.mu.Lock()
	e.hasPending = false
	e.mu.Unlock()
	if err := e.materials.UpdateConfig(p.Config); err != nil {
		e.bus.Publish(events.ShaderFailure{Mode: p.Config.Mode, Err: err})
		return err
	}
	e.config = p.Config
	if err := fractal.SyncUniforms(p.Config, e.materials.UniformSet()); err != nil {
		log.Printf("config uniform sync failed: %v", err)
	}
	if e.rend != nil {
		if err := e.registerPipelines(); err != nil {
			e.bus.Publish(events.ShaderFailure{Mode: p.Config.Mode, Err: err})
			return err
		}
	}

	if len(p.Gradient) > 0 {
		// Presets carry the surface palette only; overlay layers keep their
		// current contents.
		if len(e.gradientLayers) == 0 {
			e.gradientLayers = [][]gradient.Stop{nil}
		}
		e.gradientLayers[0] = append([]gradient.Stop(nil), p.Gradient...)
		if e.rend != nil {
			if err := e.rend.SetGradient(gradient.BakeLayers(e.gradientLayers)); err != nil {
				return err
			}
		}
	}
	e.accumul.RequestReset()
	return nil
}

func (e *engine) CurrentPreset() preset.Preset {
	var surface []gradient.Stop
	if len(e.gradientLayers) > 0 {
		surface = append(surface, e.gradientLayers[0]...)
	}
	return preset.Preset{
		Camera:   e.Snapshot(),
		Config:   e.config.Clone(),
		Gradient: surface,
	}
}

func (e *engine) ExportImage(width, height int) ([]byte, error) {
	if e.rend == nil {
		return nil, fmt.Errorf("no renderer attached")
	}
	if err := e.registerPipelines(); err != nil {
		return nil, err
	}

	set := e.materials.UniformSet()
	surfW, surfH := e.rend.Size()
	defer func() {
		// Restore the interactive view's window; the next frame re-renders
		// from a clean accumulation.
		_ = set.Write("uTileOrigin", uniform.Vec2(0, 0))
		_ = set.Write("uTileScale", uniform.Vec2(1, 1))
		_ = set.Write("uResolution", uniform.Vec2(float64(surfW), float64(surfH)))
		_ = set.Write("uJitter", uniform.Vec2(0, 0))
		e.accumul.RequestReset()
	}()

	if err := set.Write("uResolution", uniform.Vec2(float64(width), float64(height))); err != nil {
		return nil, err
	}

	return e.buckets.Render(width, height, func(tile accum.Tile, samples uint64) ([]byte, error) {
		if err := set.Write("uTileOrigin", uniform.Vec2(
			float64(tile.X)/float64(width), float64(tile.Y)/float64(height))); err != nil {
			return nil, err
		}
		if err := set.Write("uTileScale", uniform.Vec2(
			float64(tile.Width)/float64(width), float64(tile.Height)/float64(height))); err != nil {
			return nil, err
		}

		// Converge on the CPU: each sample renders the tile once with its own
		// jitter and the running sum is averaged at the end. The offscreen
		// target is transient, so accumulation cannot live on the GPU here.
		acc := make([]float64, tile.Width*tile.Height*4)
		if samples == 0 {
			samples = 1
		}
		for s := uint64(0); s < samples; s++ {
			j := accum.JitterAt(s)
			if err := set.Write("uJitter", uniform.Vec2(j[0], j[1])); err != nil {
				return nil, err
			}
			if err := set.Write("uSampleIndex", uniform.UInt(uint32(s))); err != nil {
				return nil, err
			}
			e.rend.WriteUniforms(set.Bytes())

			px, err := e.rend.RenderTile(tilePipelineKey, tile.Width, tile.Height)
			if err != nil {
				return nil, err
			}
			for i, b := range px {
				acc[i] += float64(b)
			}
		}

		out := make([]byte, len(acc))
		inv := 1.0 / float64(samples)
		for i, v := range acc {
			out[i] = byte(common.Clamp(v*inv, 0, 255) + 0.5)
		}
		return out, nil
	})
}

func (e *engine) Run() {
	if e.window == nil {
		return
	}
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render, and quit goroutines.
func (e *engine) handle() {
	e.running = true
	e.wg.Add(3)
	go e.handleTick()
	go e.handleRender()
	go e.handleQuit()
}

// handleTick runs the fixed-rate tick loop in its own goroutine. Input
// sampling and event publication belong here; the render goroutine owns the
// frame lifecycle.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop: one Update then one Render per frame,
// single-threaded. Recovers from panics to avoid crashing the process and
// signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := now.Sub(lastRender).Seconds()
			lastRender = now

			e.Update(dt)
			if err := e.Render(); err != nil {
				// Log once per distinct failure, not once per frame.
				if e.frameError == nil || e.frameError.Error() != err.Error() {
					log.Printf("render frame failed: %v", err)
				}
				e.frameError = err
			} else {
				e.frameError = nil
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
