package accum

// PipelineBuilderOption is a functional option for configuring a Pipeline.
type PipelineBuilderOption func(*pipelineImpl)

// WithSampleCap sets the initial sample cap. Zero leaves accumulation
// unbounded, which is the default.
//
// Parameters:
//   - cap: the maximum number of accumulated samples
//
// Returns:
//   - PipelineBuilderOption: the option to apply
func WithSampleCap(cap uint64) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.sampleCap = cap
	}
}
