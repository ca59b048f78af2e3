package engine

import (
	"time"

	"github.com/gamazama/GMT-fractals-sub005/engine/accum"
	"github.com/gamazama/GMT-fractals-sub005/engine/camera"
	"github.com/gamazama/GMT-fractals-sub005/engine/events"
	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/gradient"
	"github.com/gamazama/GMT-fractals-sub005/engine/light"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
	"github.com/gamazama/GMT-fractals-sub005/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the
// engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a pre-configured window for the engine to render into. When
// supplied, a GPU renderer is created against the window's surface unless one
// is injected with WithRenderer. Without a window the engine runs headless.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer injects a pre-built renderer instead of letting the engine
// construct one from the window.
//
// Parameters:
//   - r: the renderer to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.rend = r
	}
}

// WithBus injects the event bus collaborators publish configuration through.
//
// Parameters:
//   - b: the bus to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBus(b events.Bus) EngineBuilderOption {
	return func(e *engine) {
		e.bus = b
	}
}

// WithPrecisionSpace injects the precision space, typically constructed with a
// persisted initial offset.
//
// Parameters:
//   - s: the space to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPrecisionSpace(s precision.PrecisionSpace) EngineBuilderOption {
	return func(e *engine) {
		e.space = s
	}
}

// WithCamera injects a pre-configured camera.
//
// Parameters:
//   - c: the camera to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.cam = c
	}
}

// WithController injects a pre-configured navigation controller. The
// controller must wrap the same camera the engine renders from.
//
// Parameters:
//   - c: the controller to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithController(c camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
	}
}

// WithRegistry injects the feature registry the composer walks. Defaults to
// the builtin fractal feature set.
//
// Parameters:
//   - r: the registry to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRegistry(r feature.Registry) EngineBuilderOption {
	return func(e *engine) {
		e.registry = r
	}
}

// WithUniformSchema injects the uniform schema. Defaults to the builtin
// fractal renderer schema.
//
// Parameters:
//   - s: the schema to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUniformSchema(s uniform.Schema) EngineBuilderOption {
	return func(e *engine) {
		e.schema = s
	}
}

// WithAccumulation injects the accumulation pipeline, typically configured
// with a sample cap for Direct-mode interactivity.
//
// Parameters:
//   - p: the pipeline to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAccumulation(p accum.Pipeline) EngineBuilderOption {
	return func(e *engine) {
		e.accumul = p
	}
}

// WithLightRig injects a pre-populated light rig.
//
// Parameters:
//   - r: the rig to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLightRig(r light.Rig) EngineBuilderOption {
	return func(e *engine) {
		e.lights = r
	}
}

// WithBucketRenderer injects the tiled export driver, typically configured
// with a tile size and convergence threshold.
//
// Parameters:
//   - b: the bucket renderer to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBucketRenderer(b accum.BucketRenderer) EngineBuilderOption {
	return func(e *engine) {
		e.buckets = b
	}
}

// WithGradient sets the initial surface-palette color stops baked into row 0
// of the lookup texture at startup.
//
// Parameters:
//   - stops: the color stops
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGradient(stops []gradient.Stop) EngineBuilderOption {
	return func(e *engine) {
		e.gradientLayers = [][]gradient.Stop{append([]gradient.Stop(nil), stops...)}
	}
}

// WithRecompileDebounce overrides the delay that coalesces rapid-fire
// shader-affecting config changes into a single recompilation.
//
// Parameters:
//   - d: the debounce window; values <= 0 recompile on the next Update
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRecompileDebounce(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.debounce = d
	}
}

// WithCompileReportThreshold overrides the minimum compile duration that gets
// reported to collaborators as a visible "compiling" indicator.
//
// Parameters:
//   - d: the visibility threshold
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCompileReportThreshold(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.compileThreshold = d
	}
}

// WithSmoothing enables or disables render-time camera pose smoothing.
//
// Parameters:
//   - enabled: false makes every frame track the target pose exactly
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSmoothing(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.smoothingEnabled = enabled
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per
// second. Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
