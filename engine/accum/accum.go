package accum

import "sync"

// Sample is the per-frame accumulation state handed to the renderer: the
// index to blend with and the subpixel jitter to apply to this frame's rays.
type Sample struct {
	// Index is the sample counter value for this frame. Index 0 means the
	// accumulation buffer restarts from this frame.
	Index uint64

	// Jitter is the subpixel offset derived from the low-discrepancy sequence.
	Jitter [2]float64
}

// pipelineImpl is the implementation of the Pipeline interface.
type pipelineImpl struct {
	mu *sync.Mutex

	sampleIndex  uint64
	resetPending bool
	sampleCap    uint64
}

// Pipeline progressively refines a noisy single-sample image into a converged
// one across frames. It owns the sample counter and its reset semantics:
// zeroing the counter is the only legal way to discard accumulated samples,
// and every operation that can change the rendered result must request it.
type Pipeline interface {
	// RequestReset marks the accumulation as invalid. The reset takes effect
	// at the start of the next Advance call, before that frame's jitter index
	// is computed.
	RequestReset()

	// ResetPending reports whether a reset is queued but not yet applied.
	//
	// Returns:
	//   - bool: true if the next Advance restarts accumulation
	ResetPending() bool

	// Advance produces the accumulation state for one frame: it applies a
	// pending reset first, derives the jitter for the current index, then
	// increments the counter. When a sample cap is configured and reached,
	// the counter stops advancing and the same final sample is returned,
	// letting the caller skip redundant renders.
	//
	// Returns:
	//   - Sample: this frame's sample index and jitter
	Advance() Sample

	// SampleIndex returns the counter value the next Advance will use.
	//
	// Returns:
	//   - uint64: the pending sample index
	SampleIndex() uint64

	// Converged reports whether the configured sample cap has been reached.
	// Always false when no cap is set: the pipeline itself never caps sample
	// count, that policy belongs to the caller.
	//
	// Returns:
	//   - bool: true if accumulation has reached the cap
	Converged() bool

	// SetSampleCap replaces the sample cap. Zero removes the cap.
	//
	// Parameters:
	//   - cap: the maximum number of accumulated samples, or 0 for unbounded
	SetSampleCap(cap uint64)
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates an accumulation Pipeline with the counter at zero and a
// reset already applied, so the first frame renders undistorted.
//
// Parameters:
//   - options: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the newly created pipeline
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	p := &pipelineImpl{
		mu: &sync.Mutex{},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *pipelineImpl) RequestReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetPending = true
}

func (p *pipelineImpl) ResetPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resetPending
}

func (p *pipelineImpl) Advance() Sample {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Reset applies before the jitter index is derived for this frame.
	if p.resetPending {
		p.sampleIndex = 0
		p.resetPending = false
	}

	index := p.sampleIndex
	if p.sampleCap > 0 && index >= p.sampleCap {
		index = p.sampleCap - 1
		return Sample{Index: index, Jitter: JitterAt(index)}
	}
	p.sampleIndex++
	return Sample{Index: index, Jitter: JitterAt(index)}
}

func (p *pipelineImpl) SampleIndex() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resetPending {
		return 0
	}
	return p.sampleIndex
}

func (p *pipelineImpl) Converged() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sampleCap > 0 && p.sampleIndex >= p.sampleCap && !p.resetPending
}

func (p *pipelineImpl) SetSampleCap(cap uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sampleCap = cap
}
