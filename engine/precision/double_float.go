package precision

import (
	"math"

	"github.com/gamazama/GMT-fractals-sub005/common"
)

// DoubleFloat is one axis of a world coordinate split into a GPU-safe float32
// high part and a float64 residual low part. High+Low reconstructs the true
// value to double precision even though only High crosses the GPU boundary.
type DoubleFloat struct {
	// High is the float32 part uploaded to the GPU.
	High float32

	// Low is the float64 residual kept on the CPU. After Normalize,
	// |Low| <= 0.5 always holds.
	Low float64
}

// Split partitions a float64 into a DoubleFloat such that High+Low recovers
// the input to full float64 precision. High is the nearest float32 to v.
//
// Parameters:
//   - v: the value to split
//
// Returns:
//   - DoubleFloat: the split representation
func Split(v float64) DoubleFloat {
	h := float32(v)
	return DoubleFloat{High: h, Low: v - float64(h)}
}

// Value reconstructs the full-precision value High + Low.
//
// Returns:
//   - float64: the reconstructed value
func (d DoubleFloat) Value() float64 {
	return float64(d.High) + d.Low
}

// normalize folds integer-valued overflow from Low into High so that
// |Low| <= 0.5 afterwards. The shift is a pure re-partitioning: High+Low is
// unchanged (up to float32 rounding of High at extreme magnitudes).
func (d *DoubleFloat) normalize() {
	if math.Abs(d.Low) > 0.5 {
		shift := math.Floor(d.Low + 0.5)
		d.High = float32(float64(d.High) + shift)
		d.Low -= shift
	}
}

// DoubleFloat3 is a 3D world position in split representation, one DoubleFloat
// per axis. This is the "virtual space" offset that lets a 32-bit GPU render
// at arbitrary zoom depth without precision jitter.
type DoubleFloat3 struct {
	X, Y, Z DoubleFloat
}

// SplitVec splits a full-precision vector into a DoubleFloat3.
//
// Parameters:
//   - v: the vector to split
//
// Returns:
//   - DoubleFloat3: the split representation
func SplitVec(v common.Vec3) DoubleFloat3 {
	return DoubleFloat3{X: Split(v.X), Y: Split(v.Y), Z: Split(v.Z)}
}

// Value reconstructs the full-precision vector.
//
// Returns:
//   - common.Vec3: the reconstructed vector
func (d DoubleFloat3) Value() common.Vec3 {
	return common.Vec3{X: d.X.Value(), Y: d.Y.Value(), Z: d.Z.Value()}
}

// High returns the float32 parts of all three axes, in upload order.
//
// Returns:
//   - [3]float32: the GPU-visible high parts
func (d DoubleFloat3) High() [3]float32 {
	return [3]float32{d.X.High, d.Y.High, d.Z.High}
}

// Low returns the float64 residual parts of all three axes.
//
// Returns:
//   - common.Vec3: the CPU-side low parts
func (d DoubleFloat3) Low() common.Vec3 {
	return common.Vec3{X: d.X.Low, Y: d.Y.Low, Z: d.Z.Low}
}

// Normalize re-partitions every axis so |Low| <= 0.5, leaving High+Low unchanged.
func (d *DoubleFloat3) Normalize() {
	d.X.normalize()
	d.Y.normalize()
	d.Z.normalize()
}

// Move adds per-frame drift deltas into the low parts only, then normalizes.
// High is never re-derived on the hot path; it only changes when a low part
// overflows past 0.5.
//
// Parameters:
//   - dx, dy, dz: world-space deltas to accumulate
func (d *DoubleFloat3) Move(dx, dy, dz float64) {
	d.X.Low += dx
	d.Y.Low += dy
	d.Z.Low += dz
	d.Normalize()
}

// Add folds a full-precision vector into the offset, normalizing afterwards.
//
// Parameters:
//   - v: the vector to fold in
func (d *DoubleFloat3) Add(v common.Vec3) {
	d.Move(v.X, v.Y, v.Z)
}
