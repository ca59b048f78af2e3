package precision

import (
	"math"
	"sync"

	"github.com/gamazama/GMT-fractals-sub005/common"
)

const (
	// defaultSmoothRate is the exponential-decay rate λ (per second) for the
	// interpolating smoothing regime.
	defaultSmoothRate = 40.0

	// lockPosEpsilonSq is the squared positional delta below which the
	// smoothed pose may lock to the target.
	lockPosEpsilonSq = 1e-21

	// lockAngEpsilon is the angular delta (radians) below which the smoothed
	// pose may lock to the target.
	lockAngEpsilon = 1e-11
)

// smoothRegime identifies the state of the pose-smoothing state machine.
type smoothRegime int

const (
	// regimeLocked means the camera is stationary: the smoothed pose snaps to
	// the target every frame with no interpolation, avoiding needless re-renders.
	regimeLocked smoothRegime = iota

	// regimeInterpolating means the smoothed pose is decaying toward the target.
	regimeInterpolating
)

// precisionSpaceImpl is the implementation of the PrecisionSpace interface.
type precisionSpaceImpl struct {
	mu *sync.Mutex

	offset DoubleFloat3

	smoothRate float64

	regime     smoothRegime
	firstFrame bool
	snapQueued bool
	smoothed   Pose
}

// PrecisionSpace maintains a world offset with effectively infinite precision
// while the camera's local position and rotation stay near the origin, because
// the GPU only accepts 32-bit floats. It also owns the render-time pose
// smoothing state machine and the conversions between the "local + offset"
// representation and a single CameraSnapshot.
type PrecisionSpace interface {
	// Offset returns the current split world offset.
	//
	// Returns:
	//   - DoubleFloat3: the current offset
	Offset() DoubleFloat3

	// SetOffset replaces the offset with a freshly split full-precision vector.
	//
	// Parameters:
	//   - v: the new world offset
	SetOffset(v common.Vec3)

	// SetOffsetExact replaces the offset with an already-split representation,
	// normalizing it so the |Low| <= 0.5 invariant holds.
	//
	// Parameters:
	//   - o: the new split offset
	SetOffsetExact(o DoubleFloat3)

	// Move accumulates per-frame drift deltas into the offset's low parts and
	// re-normalizes. This is the cheap hot-path mutation used by navigation.
	//
	// Parameters:
	//   - dx, dy, dz: world-space deltas
	Move(dx, dy, dz float64)

	// AbsorbCamera folds the camera's current local position into the offset.
	// The caller must then zero the local camera position; this keeps the view
	// identical while re-anchoring the virtual space. Used whenever a
	// navigation mode switch would otherwise leave residual local offset.
	//
	// Parameters:
	//   - localPos: the camera's local position to absorb
	AbsorbCamera(localPos common.Vec3)

	// QueueSnap forces the next UpdateSmoothing call to jump to the target
	// pose without interpolation. Used after teleports.
	QueueSnap()

	// UpdateSmoothing advances the pose-smoothing state machine by one frame
	// and returns the pose to render with.
	//
	// Three regimes: locked (stationary camera, smoothed == target exactly),
	// interpolating (exponential-decay lerp/slerp toward target), and orbit
	// (orbit mode always tracks the target exactly; smoothing is only
	// meaningful in fly mode). A queued snap, the first frame, or
	// shouldSmooth=false all force an immediate non-interpolated jump.
	//
	// Parameters:
	//   - target: the authoritative camera pose this frame
	//   - dt: frame delta time in seconds
	//   - orbitMode: true when the camera is in orbit navigation mode
	//   - shouldSmooth: false disables interpolation entirely for this frame
	//
	// Returns:
	//   - Pose: the smoothed pose to use for rendering
	UpdateSmoothing(target Pose, dt float64, orbitMode, shouldSmooth bool) Pose

	// SmoothedPose returns the most recent smoothed pose without advancing
	// the state machine.
	//
	// Returns:
	//   - Pose: the current smoothed pose
	SmoothedPose() Pose

	// Locked reports whether the smoothing state machine is in the locked
	// regime, meaning nothing moved and accumulated samples remain valid.
	//
	// Returns:
	//   - bool: true if locked
	Locked() bool

	// UnifiedCameraState converts the current local+offset representation into
	// a single CameraSnapshot. Given the same split/normalize rules this is
	// the exact inverse of ApplyCameraState.
	//
	// Parameters:
	//   - localPos: the camera's local position
	//   - rotation: the camera's orientation
	//   - lastDistance: the most recent valid probe distance
	//
	// Returns:
	//   - CameraSnapshot: the round-trippable snapshot
	UnifiedCameraState(localPos common.Vec3, rotation common.Quat, lastDistance float64) CameraSnapshot

	// ApplyCameraState installs a CameraSnapshot as the authoritative camera
	// state: the offset is replaced and a pose snap is queued so the next
	// frame renders from the new location without interpolation.
	//
	// Parameters:
	//   - snap: the snapshot to apply
	//
	// Returns:
	//   - Pose: the local pose the caller must install on its camera
	ApplyCameraState(snap CameraSnapshot) Pose

	// ResolveRealWorldPosition converts a point between camera-relative
	// (headlamp) space and world-anchored space using the current offset and
	// the given camera pose, so that toggling an object's attachment mode
	// does not visually move it.
	//
	// Parameters:
	//   - p: the point to convert
	//   - cam: the camera pose the point is (or becomes) relative to
	//   - toWorld: true converts camera-relative -> world-anchored; false the inverse
	//
	// Returns:
	//   - common.Vec3: the converted point
	ResolveRealWorldPosition(p common.Vec3, cam Pose, toWorld bool) common.Vec3

	// ResolveRealWorldRotation converts a rotation between camera-relative and
	// world-anchored spaces using the given camera orientation.
	//
	// Parameters:
	//   - r: the rotation to convert
	//   - camRotation: the camera orientation
	//   - toWorld: true converts camera-relative -> world-anchored; false the inverse
	//
	// Returns:
	//   - common.Quat: the converted rotation
	ResolveRealWorldRotation(r common.Quat, camRotation common.Quat, toWorld bool) common.Quat
}

var _ PrecisionSpace = &precisionSpaceImpl{}

// NewPrecisionSpace creates a new PrecisionSpace. The offset starts at the
// origin unless WithInitialOffset is supplied (typically from a persisted
// preset). The space is never destroyed during a session, only reset.
//
// Parameters:
//   - options: functional options to configure the space
//
// Returns:
//   - PrecisionSpace: the newly created space
func NewPrecisionSpace(options ...PrecisionSpaceBuilderOption) PrecisionSpace {
	p := &precisionSpaceImpl{
		mu:         &sync.Mutex{},
		smoothRate: defaultSmoothRate,
		regime:     regimeLocked,
		firstFrame: true,
		smoothed:   Pose{Rotation: common.QuatIdentity()},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *precisionSpaceImpl) Offset() DoubleFloat3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

func (p *precisionSpaceImpl) SetOffset(v common.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = SplitVec(v)
	p.offset.Normalize()
}

func (p *precisionSpaceImpl) SetOffsetExact(o DoubleFloat3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o.Normalize()
	p.offset = o
}

func (p *precisionSpaceImpl) Move(dx, dy, dz float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset.Move(dx, dy, dz)
}

func (p *precisionSpaceImpl) AbsorbCamera(localPos common.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset.Add(localPos)
}

func (p *precisionSpaceImpl) QueueSnap() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapQueued = true
}

func (p *precisionSpaceImpl) UpdateSmoothing(target Pose, dt float64, orbitMode, shouldSmooth bool) Pose {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Orbit mode always tracks the target exactly; a queued snap, the first
	// frame, or disabled smoothing likewise jump without interpolation.
	if p.firstFrame || p.snapQueued || orbitMode || !shouldSmooth {
		p.firstFrame = false
		p.snapQueued = false
		p.smoothed = target
		p.regime = regimeLocked
		return p.smoothed
	}

	posDeltaSq := target.Position.Sub(p.smoothed.Position).LengthSq()
	angDelta := p.smoothed.Rotation.AngleTo(target.Rotation)

	switch p.regime {
	case regimeLocked:
		if posDeltaSq > lockPosEpsilonSq || angDelta > lockAngEpsilon {
			p.regime = regimeInterpolating
		} else {
			// Stationary: keep the smoothed pose exactly equal to the target
			// so no residual lerp drift can accumulate.
			p.smoothed = target
			return p.smoothed
		}
	case regimeInterpolating:
		// fall through to the interpolation step below
	}

	t := 1 - math.Exp(-p.smoothRate*dt)
	p.smoothed.Position = p.smoothed.Position.Lerp(target.Position, t)
	p.smoothed.Rotation = p.smoothed.Rotation.Slerp(target.Rotation, t)

	// Lock as soon as both residual deltas fall under the epsilons.
	if target.Position.Sub(p.smoothed.Position).LengthSq() <= lockPosEpsilonSq &&
		p.smoothed.Rotation.AngleTo(target.Rotation) <= lockAngEpsilon {
		p.smoothed = target
		p.regime = regimeLocked
	}
	return p.smoothed
}

func (p *precisionSpaceImpl) SmoothedPose() Pose {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.smoothed
}

func (p *precisionSpaceImpl) Locked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regime == regimeLocked
}

func (p *precisionSpaceImpl) UnifiedCameraState(localPos common.Vec3, rotation common.Quat, lastDistance float64) CameraSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return CameraSnapshot{
		LocalPosition:        localPos,
		Rotation:             rotation,
		WorldOffset:          p.offset,
		LastMeasuredDistance: lastDistance,
	}
}

func (p *precisionSpaceImpl) ApplyCameraState(snap CameraSnapshot) Pose {
	p.mu.Lock()
	defer p.mu.Unlock()

	offset := snap.WorldOffset
	offset.Normalize()
	p.offset = offset
	p.snapQueued = true

	pose := Pose{Position: snap.LocalPosition, Rotation: snap.Rotation.Normalized()}
	p.smoothed = pose
	p.regime = regimeLocked
	return pose
}

func (p *precisionSpaceImpl) ResolveRealWorldPosition(pt common.Vec3, cam Pose, toWorld bool) common.Vec3 {
	p.mu.Lock()
	offset := p.offset.Value()
	p.mu.Unlock()

	if toWorld {
		// camera-relative -> world-anchored
		return offset.Add(cam.Position).Add(cam.Rotation.Rotate(pt))
	}
	// world-anchored -> camera-relative
	return cam.Rotation.Conjugate().Rotate(pt.Sub(offset).Sub(cam.Position))
}

func (p *precisionSpaceImpl) ResolveRealWorldRotation(r common.Quat, camRotation common.Quat, toWorld bool) common.Quat {
	if toWorld {
		return camRotation.Mul(r).Normalized()
	}
	return camRotation.Conjugate().Mul(r).Normalized()
}
