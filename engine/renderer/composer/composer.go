package composer

import (
	"fmt"
	"sync"

	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// FullscreenVertexSource is the shared vertex stage for every composed
// fragment shader: one oversized triangle covering the viewport, emitting UV
// coordinates for the raymarcher. It never changes, so it is compiled once and
// reused across all variants and modes.
const FullscreenVertexSource = `struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var out: VertexOutput;
    let x = f32(i32(index & 1u) * 4 - 1);
    let y = f32(i32(index >> 1u) * 4 - 1);
    out.position = vec4<f32>(x, y, 0.0, 1.0);
    out.uv = vec2<f32>(x, y) * 0.5 + vec2<f32>(0.5, 0.5);
    return out;
}
`

// GlobalDefine derives one compile-time constant from the active config. The
// derivation must be pure: identical configs must yield identical values,
// because the emitted text feeds the content hash that gates GPU recompiles.
type GlobalDefine struct {
	// Name is the WGSL constant name.
	Name string

	// Derive computes the constant's literal value from the config.
	Derive func(cfg feature.Config) string
}

// composerImpl is the implementation of the Composer interface.
type composerImpl struct {
	mu *sync.Mutex

	registry      feature.Registry
	schema        uniform.Schema
	globalDefines []GlobalDefine
	group         int
	binding       int
}

// Composer turns a render variant plus a configuration into one complete,
// deterministic WGSL fragment source string. Equal configs produce
// byte-identical output, which is the property that lets the material cache
// skip redundant GPU recompilation.
type Composer interface {
	// Build assembles the fragment shader for one variant.
	//
	// The steps are fixed: emit the base header, compute every global define
	// from the config, emit the uniform declarations generated from the
	// schema, then let every registered feature inject in registration order.
	// A feature decides internally whether it contributes real code or no-op
	// stubs for this variant.
	//
	// Parameters:
	//   - variant: which shader build to target
	//   - cfg: the composition input
	//
	// Returns:
	//   - string: the complete WGSL fragment source
	//   - error: if no feature installed an entry point
	Build(variant feature.Variant, cfg feature.Config) (string, error)
}

var _ Composer = &composerImpl{}

// NewComposer creates a Composer.
//
// Parameters:
//   - options: functional options to configure the composer
//
// Returns:
//   - Composer: the newly created composer
func NewComposer(options ...ComposerBuilderOption) Composer {
	c := &composerImpl{
		mu: &sync.Mutex{},
	}
	for _, option := range options {
		option(c)
	}
	if c.registry == nil {
		c.registry = feature.NewRegistry()
	}
	if c.schema == nil {
		c.schema = uniform.NewSchema()
	}
	return c
}

func (c *composerImpl) Build(variant feature.Variant, cfg feature.Config) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := newFragmentBuilder()
	b.AddHeader(fmt.Sprintf("// variant: %s, mode: %s", variant, cfg.Mode))

	for _, gd := range c.globalDefines {
		b.AddDefine(gd.Name, gd.Derive(cfg))
	}

	b.setUniformBlock(c.schema.WGSLStruct("Params", "params", c.group, c.binding))

	for _, def := range c.registry.All() {
		def.Inject(b, cfg, variant)
	}

	if b.entryPoint == "" {
		return "", fmt.Errorf("no feature installed an entry point for variant %s", variant)
	}
	return b.buildFragment(), nil
}
