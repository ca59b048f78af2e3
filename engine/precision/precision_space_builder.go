package precision

import "github.com/gamazama/GMT-fractals-sub005/common"

// PrecisionSpaceBuilderOption is a functional option for configuring a PrecisionSpace.
type PrecisionSpaceBuilderOption func(*precisionSpaceImpl)

// WithInitialOffset sets the starting world offset from a full-precision
// vector, typically restored from a persisted preset.
//
// Parameters:
//   - v: the initial world offset
//
// Returns:
//   - PrecisionSpaceBuilderOption: the option to apply
func WithInitialOffset(v common.Vec3) PrecisionSpaceBuilderOption {
	return func(p *precisionSpaceImpl) {
		p.offset = SplitVec(v)
		p.offset.Normalize()
	}
}

// WithInitialOffsetExact sets the starting world offset from an already-split
// representation, preserving the stored high/low partition.
//
// Parameters:
//   - o: the initial split offset
//
// Returns:
//   - PrecisionSpaceBuilderOption: the option to apply
func WithInitialOffsetExact(o DoubleFloat3) PrecisionSpaceBuilderOption {
	return func(p *precisionSpaceImpl) {
		o.Normalize()
		p.offset = o
	}
}

// WithSmoothingRate overrides the exponential-decay rate for pose smoothing.
//
// Parameters:
//   - rate: the decay rate in units of 1/second, must be > 0
//
// Returns:
//   - PrecisionSpaceBuilderOption: the option to apply
func WithSmoothingRate(rate float64) PrecisionSpaceBuilderOption {
	return func(p *precisionSpaceImpl) {
		if rate > 0 {
			p.smoothRate = rate
		}
	}
}
