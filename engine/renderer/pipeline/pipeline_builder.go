package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option applied to a pipeline during construction via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithVertexSource sets the WGSL source and entry point for the vertex stage.
//
// Parameters:
//   - source: the complete WGSL vertex module
//   - entryPoint: the vertex entry function name
//
// Returns:
//   - PipelineBuilderOption: a function that applies the vertex source to a pipeline
func WithVertexSource(source, entryPoint string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexSource = source
		if entryPoint != "" {
			p.vertexEntryPoint = entryPoint
		}
	}
}

// WithFragmentSource sets the WGSL source and entry point for the fragment stage.
//
// Parameters:
//   - source: the complete WGSL fragment module
//   - entryPoint: the fragment entry function name
//
// Returns:
//   - PipelineBuilderOption: a function that applies the fragment source to a pipeline
func WithFragmentSource(source, entryPoint string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentSource = source
		if entryPoint != "" {
			p.fragmentEntryPoint = entryPoint
		}
	}
}

// WithTargetFormat sets the color target format for offscreen pipelines.
// When not specified, the pipeline targets the surface format.
//
// Parameters:
//   - format: the texture format to render into
//
// Returns:
//   - PipelineBuilderOption: a function that applies the target format to a pipeline
func WithTargetFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.targetFormat = format
	}
}

// WithBlend enables alpha blending with the given state. Accumulation passes
// blend each new sample over the running average with a 1/N source factor
// expressed through the sample's alpha.
//
// Parameters:
//   - state: the blend state to use; nil keeps the default over-blend
//
// Returns:
//   - PipelineBuilderOption: a function that applies the blend option to a pipeline
func WithBlend(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = true
		if state != nil {
			p.blendState = state
		}
	}
}
