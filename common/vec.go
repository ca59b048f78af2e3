package common

import "math"

// Vec3 is a 3D vector with float64 components. Camera-space and offset math is
// carried out in double precision on the CPU; values are only narrowed to
// float32 at the GPU upload boundary.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum v + o.
//
// Parameters:
//   - o: the vector to add
//
// Returns:
//   - Vec3: the component-wise sum
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
//
// Parameters:
//   - o: the vector to subtract
//
// Returns:
//   - Vec3: the component-wise difference
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns the vector scaled by s.
//
// Parameters:
//   - s: the scalar multiplier
//
// Returns:
//   - Vec3: the scaled vector
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
//
// Parameters:
//   - o: the other vector
//
// Returns:
//   - float64: the dot product
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// LengthSq returns the squared Euclidean length of v.
// Preferred over Length for threshold comparisons since it avoids the sqrt.
//
// Returns:
//   - float64: the squared length
func (v Vec3) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the Euclidean length of v.
//
// Returns:
//   - float64: the length
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// Normalized returns v scaled to unit length. Zero-length input returns the
// zero vector rather than NaN components.
//
// Returns:
//   - Vec3: the unit-length vector, or the zero vector for degenerate input
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp returns the linear interpolation between v and o at parameter t.
//
// Parameters:
//   - o: the target vector
//   - t: interpolation parameter (0 = v, 1 = o)
//
// Returns:
//   - Vec3: the interpolated vector
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		v.X + (o.X-v.X)*t,
		v.Y + (o.Y-v.Y)*t,
		v.Z + (o.Z-v.Z)*t,
	}
}

// Quat is a rotation quaternion with float64 components, stored as W + Xi + Yj + Zk.
type Quat struct {
	W, X, Y, Z float64
}

// QuatIdentity returns the identity rotation.
//
// Returns:
//   - Quat: the identity quaternion
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// Mul returns the Hamilton product q * o, composing o's rotation followed by q's.
//
// Parameters:
//   - o: the right-hand quaternion
//
// Returns:
//   - Quat: the product quaternion
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Dot returns the 4D dot product of q and o.
//
// Parameters:
//   - o: the other quaternion
//
// Returns:
//   - float64: the dot product
func (q Quat) Dot(o Quat) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

// Conjugate returns the conjugate of q. For unit quaternions this is the
// inverse rotation.
//
// Returns:
//   - Quat: the conjugate quaternion
func (q Quat) Conjugate() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Normalized returns q scaled to unit length. Degenerate input returns identity.
//
// Returns:
//   - Quat: the normalized quaternion, or identity for degenerate input
func (q Quat) Normalized() Quat {
	l := math.Sqrt(q.Dot(q))
	if l < 1e-12 {
		return QuatIdentity()
	}
	inv := 1 / l
	return Quat{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// Rotate applies the rotation q to the vector v.
// Uses the expanded sandwich product q * v * q⁻¹ without building intermediates.
//
// Parameters:
//   - v: the vector to rotate
//
// Returns:
//   - Vec3: the rotated vector
func (q Quat) Rotate(v Vec3) Vec3 {
	// t = 2 * cross(q.xyz, v)
	tx := 2 * (q.Y*v.Z - q.Z*v.Y)
	ty := 2 * (q.Z*v.X - q.X*v.Z)
	tz := 2 * (q.X*v.Y - q.Y*v.X)
	// v' = v + w*t + cross(q.xyz, t)
	return Vec3{
		v.X + q.W*tx + q.Y*tz - q.Z*ty,
		v.Y + q.W*ty + q.Z*tx - q.X*tz,
		v.Z + q.W*tz + q.X*ty - q.Y*tx,
	}
}

// Slerp returns the spherical linear interpolation from q to o at parameter t.
// Falls back to normalized lerp when the quaternions are nearly parallel to
// avoid division by a vanishing sine.
//
// Parameters:
//   - o: the target quaternion
//   - t: interpolation parameter (0 = q, 1 = o)
//
// Returns:
//   - Quat: the interpolated unit quaternion
func (q Quat) Slerp(o Quat, t float64) Quat {
	d := q.Dot(o)
	// Take the short arc.
	if d < 0 {
		o = Quat{-o.W, -o.X, -o.Y, -o.Z}
		d = -d
	}
	if d > 0.9995 {
		return Quat{
			q.W + (o.W-q.W)*t,
			q.X + (o.X-q.X)*t,
			q.Y + (o.Y-q.Y)*t,
			q.Z + (o.Z-q.Z)*t,
		}.Normalized()
	}
	theta := math.Acos(d)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return Quat{
		wa*q.W + wb*o.W,
		wa*q.X + wb*o.X,
		wa*q.Y + wb*o.Y,
		wa*q.Z + wb*o.Z,
	}
}

// AngleTo returns the rotation angle in radians between q and o.
//
// Parameters:
//   - o: the other quaternion
//
// Returns:
//   - float64: the angle of the relative rotation, in [0, π]
func (q Quat) AngleTo(o Quat) float64 {
	d := math.Abs(q.Dot(o))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// QuatFromAxisAngle builds a quaternion rotating angle radians about the given axis.
//
// Parameters:
//   - axis: the rotation axis (normalized internally)
//   - angle: the rotation angle in radians
//
// Returns:
//   - Quat: the unit quaternion for the rotation
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalized()
	half := angle / 2
	s := math.Sin(half)
	return Quat{
		W: math.Cos(half),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}
