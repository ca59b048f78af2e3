package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the WGSL source for one fullscreen pass and the WebGPU render
// pipeline compiled from it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// vertexSource and fragmentSource are complete WGSL modules. The vertex
	// stage is always the shared fullscreen triangle; the fragment stage is the
	// composed raymarch shader for one variant.
	vertexSource   string
	fragmentSource string

	vertexEntryPoint   string
	fragmentEntryPoint string

	// targetFormat is the color target the pipeline renders into. The zero
	// value means "the surface format", resolved at registration time.
	targetFormat wgpu.TextureFormat

	blendEnabled bool
	blendState   *wgpu.BlendState
	writeMask    wgpu.ColorWriteMask

	// renderPipeline is the compiled GPU pipeline, set by the backend.
	renderPipeline *wgpu.RenderPipeline
}

// Pipeline defines the interface for one fullscreen render pipeline: the shared
// fullscreen-triangle vertex stage plus a composed fragment shader, targeting
// either the surface or an offscreen readback texture.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// VertexSource returns the WGSL source for the vertex stage.
	//
	// Returns:
	//   - string: the vertex module source
	VertexSource() string

	// FragmentSource returns the WGSL source for the fragment stage.
	//
	// Returns:
	//   - string: the fragment module source
	FragmentSource() string

	// VertexEntryPoint returns the vertex entry function name.
	//
	// Returns:
	//   - string: the entry point, defaults to "vs_main"
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment entry function name.
	//
	// Returns:
	//   - string: the entry point, defaults to "fs_main"
	FragmentEntryPoint() string

	// TargetFormat returns the configured color target format. TextureFormat
	// zero means the pipeline targets the surface format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the target format
	TargetFormat() wgpu.TextureFormat

	// BlendEnabled returns whether blending is enabled for this pipeline.
	// Accumulation passes blend each sample over the running average.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the write mask
	WriteMask() wgpu.ColorWriteMask

	// Pipeline returns the compiled render pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled pipeline or nil
	Pipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the compiled render pipeline, releasing any
	// previously compiled one.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:        pipelineKey,
		vertexEntryPoint:   "vs_main",
		fragmentEntryPoint: "fs_main",
		writeMask:          wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) VertexSource() string {
	return p.vertexSource
}

func (p *pipeline) FragmentSource() string {
	return p.fragmentSource
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntryPoint
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntryPoint
}

func (p *pipeline) TargetFormat() wgpu.TextureFormat {
	return p.targetFormat
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
	}
	p.renderPipeline = rp
}
