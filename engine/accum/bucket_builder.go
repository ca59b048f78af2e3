package accum

// BucketRendererBuilderOption is a functional option for configuring a BucketRenderer.
type BucketRendererBuilderOption func(*bucketRendererImpl)

// WithTileSize sets the bucket edge length in pixels. Defaults to 256.
//
// Parameters:
//   - size: the tile size, must be > 0
//
// Returns:
//   - BucketRendererBuilderOption: the option to apply
func WithTileSize(size int) BucketRendererBuilderOption {
	return func(b *bucketRendererImpl) {
		if size > 0 {
			b.tileSize = size
		}
	}
}

// WithConvergenceThreshold sets how many samples each bucket accumulates
// before it is considered converged. Defaults to 256.
//
// Parameters:
//   - samples: the per-bucket sample count, must be > 0
//
// Returns:
//   - BucketRendererBuilderOption: the option to apply
func WithConvergenceThreshold(samples uint64) BucketRendererBuilderOption {
	return func(b *bucketRendererImpl) {
		if samples > 0 {
			b.samples = samples
		}
	}
}

// WithWorkers sets the assembly worker count. Defaults to the CPU count.
//
// Parameters:
//   - workers: the worker count, must be > 0
//
// Returns:
//   - BucketRendererBuilderOption: the option to apply
func WithWorkers(workers int) BucketRendererBuilderOption {
	return func(b *bucketRendererImpl) {
		if workers > 0 {
			b.workers = workers
		}
	}
}
