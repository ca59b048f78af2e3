package accum

// JitterPeriod is the length of the repeating jitter sequence. Sixteen
// low-discrepancy samples cover the pixel well before the pattern repeats, and
// the short period keeps the sequence cheap to reason about when comparing
// frames.
const JitterPeriod = 16

// Halton computes the radix-inverse of index in the given base: the index's
// digits are mirrored around the radix point, yielding a low-discrepancy value
// in [0, 1). Halton(0, b) is always 0.
//
// Parameters:
//   - index: the sequence index
//   - base: the radix, at least 2
//
// Returns:
//   - float64: the radix-inverse value in [0, 1)
func Halton(index uint64, base uint64) float64 {
	if base < 2 {
		return 0
	}
	f := 1.0
	r := 0.0
	for i := index; i > 0; i /= base {
		f /= float64(base)
		r += f * float64(i%base)
	}
	return r
}

// JitterAt derives the 2D subpixel jitter for a sample index: Halton bases 2
// and 3 indexed by the counter modulo the period. Index 0 lands on (0, 0), so
// the first frame after any reset renders undistorted.
//
// Parameters:
//   - index: the sample index
//
// Returns:
//   - [2]float64: the jitter offset, each component in [0, 1)
func JitterAt(index uint64) [2]float64 {
	i := index % JitterPeriod
	return [2]float64{Halton(i, 2), Halton(i, 3)}
}
