package precision

import (
	"math"
	"testing"

	"github.com/gamazama/GMT-fractals-sub005/common"
)

func stepAll(ps PrecisionSpace, target Pose, dt float64, n int) Pose {
	var pose Pose
	for i := 0; i < n; i++ {
		pose = ps.UpdateSmoothing(target, dt, false, true)
	}
	return pose
}

func TestUpdateSmoothingFirstFrameSnaps(t *testing.T) {
	ps := NewPrecisionSpace()
	target := Pose{
		Position: common.Vec3{X: 5, Y: -2, Z: 1},
		Rotation: common.QuatFromAxisAngle(common.Vec3{Y: 1}, 0.7),
	}
	got := ps.UpdateSmoothing(target, 0.016, false, true)
	if got != target {
		t.Errorf("first frame pose = %+v, want exact target %+v", got, target)
	}
	if !ps.Locked() {
		t.Error("expected locked regime after first-frame snap")
	}
}

func TestUpdateSmoothingConverges(t *testing.T) {
	ps := NewPrecisionSpace()
	ps.UpdateSmoothing(Pose{Rotation: common.QuatIdentity()}, 0.016, false, true)

	target := Pose{
		Position: common.Vec3{X: 1},
		Rotation: common.QuatFromAxisAngle(common.Vec3{Z: 1}, 0.5),
	}
	first := ps.UpdateSmoothing(target, 0.016, false, true)
	if first.Position.X <= 0 || first.Position.X >= 1 {
		t.Errorf("first interpolated X = %v, want strictly between 0 and 1", first.Position.X)
	}
	if ps.Locked() {
		t.Error("expected interpolating regime right after a jump")
	}

	final := stepAll(ps, target, 0.016, 200)
	if final != target {
		t.Errorf("converged pose = %+v, want exact target %+v", final, target)
	}
	if !ps.Locked() {
		t.Error("expected locked regime after convergence")
	}
}

func TestUpdateSmoothingLockHysteresis(t *testing.T) {
	ps := NewPrecisionSpace()
	target := Pose{Position: common.Vec3{X: 2}, Rotation: common.QuatIdentity()}
	stepAll(ps, target, 0.016, 200)
	if !ps.Locked() {
		t.Fatal("expected locked regime after convergence")
	}

	// Sub-epsilon wobble must not break the lock or introduce lerp drift.
	wobble := target
	wobble.Position.X += 1e-12
	got := ps.UpdateSmoothing(wobble, 0.016, false, true)
	if !ps.Locked() {
		t.Error("sub-epsilon delta broke the lock")
	}
	if got != wobble {
		t.Errorf("locked pose = %+v, want exact target %+v", got, wobble)
	}

	// A real move unlocks on the first frame it exceeds either epsilon.
	moved := target
	moved.Position.X += 0.01
	ps.UpdateSmoothing(moved, 0.016, false, true)
	if ps.Locked() {
		t.Error("super-epsilon delta did not unlock")
	}
}

func TestUpdateSmoothingOrbitTracksExactly(t *testing.T) {
	ps := NewPrecisionSpace()
	ps.UpdateSmoothing(Pose{Rotation: common.QuatIdentity()}, 0.016, false, true)

	target := Pose{
		Position: common.Vec3{X: 3, Z: -1},
		Rotation: common.QuatFromAxisAngle(common.Vec3{X: 1}, 1.1),
	}
	got := ps.UpdateSmoothing(target, 0.016, true, true)
	if got != target {
		t.Errorf("orbit pose = %+v, want exact target %+v", got, target)
	}
}

func TestQueueSnapForcesJump(t *testing.T) {
	ps := NewPrecisionSpace()
	ps.UpdateSmoothing(Pose{Rotation: common.QuatIdentity()}, 0.016, false, true)

	ps.QueueSnap()
	target := Pose{Position: common.Vec3{X: 100, Y: 50}, Rotation: common.QuatIdentity()}
	got := ps.UpdateSmoothing(target, 0.016, false, true)
	if got != target {
		t.Errorf("post-snap pose = %+v, want exact target %+v", got, target)
	}
	if !ps.Locked() {
		t.Error("expected locked regime after snap")
	}
}

func TestAbsorbCamera(t *testing.T) {
	ps := NewPrecisionSpace(WithInitialOffset(common.Vec3{X: 10, Y: 20, Z: 30}))
	local := common.Vec3{X: 0.25, Y: -0.125, Z: 0.5}
	before := ps.Offset().Value().Add(local)

	ps.AbsorbCamera(local)
	// The caller zeroes the local position afterwards, so offset+0 must equal
	// the old offset+local.
	after := ps.Offset().Value()
	if math.Abs(after.X-before.X) > 1e-12 || math.Abs(after.Y-before.Y) > 1e-12 || math.Abs(after.Z-before.Z) > 1e-12 {
		t.Errorf("offset after absorb = %+v, want %+v", after, before)
	}
	low := ps.Offset().Low()
	for _, v := range []float64{low.X, low.Y, low.Z} {
		if math.Abs(v) > 0.5 {
			t.Errorf("low part %v out of bounds after absorb", v)
		}
	}
}

func TestCameraStateRoundTrip(t *testing.T) {
	ps := NewPrecisionSpace(WithInitialOffset(common.Vec3{X: 1e6 + 0.333, Y: -42.5, Z: 7}))
	localPos := common.Vec3{X: 0.1, Y: 0.2, Z: -0.3}
	rotation := common.QuatFromAxisAngle(common.Vec3{X: 1, Y: 1}.Normalized(), 0.9)

	snap := ps.UnifiedCameraState(localPos, rotation, 2.5)

	// Apply to a second space and take the state again: both snapshots must
	// describe the same real-world camera.
	other := NewPrecisionSpace()
	pose := other.ApplyCameraState(snap)
	back := other.UnifiedCameraState(pose.Position, pose.Rotation, snap.LastMeasuredDistance)

	if back.LocalPosition != snap.LocalPosition {
		t.Errorf("local position = %+v, want %+v", back.LocalPosition, snap.LocalPosition)
	}
	if back.WorldOffset.Value() != snap.WorldOffset.Value() {
		t.Errorf("offset = %+v, want %+v", back.WorldOffset.Value(), snap.WorldOffset.Value())
	}
	if back.Rotation.AngleTo(snap.Rotation) > 1e-12 {
		t.Errorf("rotation drifted by %v radians on round trip", back.Rotation.AngleTo(snap.Rotation))
	}
	if back.LastMeasuredDistance != snap.LastMeasuredDistance {
		t.Errorf("distance = %v, want %v", back.LastMeasuredDistance, snap.LastMeasuredDistance)
	}
}

func TestApplyCameraStateQueuesSnap(t *testing.T) {
	ps := NewPrecisionSpace()
	ps.UpdateSmoothing(Pose{Rotation: common.QuatIdentity()}, 0.016, false, true)

	snap := CameraSnapshot{
		LocalPosition:        common.Vec3{X: 4},
		Rotation:             common.QuatIdentity(),
		WorldOffset:          SplitVec(common.Vec3{X: 1000}),
		LastMeasuredDistance: 1.5,
	}
	pose := ps.ApplyCameraState(snap)
	got := ps.UpdateSmoothing(pose, 0.016, false, true)
	if got != pose {
		t.Errorf("frame after teleport = %+v, want exact pose %+v (no interpolation)", got, pose)
	}
}

func TestResolveRealWorldPositionInverse(t *testing.T) {
	ps := NewPrecisionSpace(WithInitialOffset(common.Vec3{X: 50, Y: -3, Z: 12}))
	cam := Pose{
		Position: common.Vec3{X: 0.4, Y: 0.1, Z: -0.2},
		Rotation: common.QuatFromAxisAngle(common.Vec3{Y: 1}, 0.6),
	}
	local := common.Vec3{X: 1, Y: 2, Z: 3}

	world := ps.ResolveRealWorldPosition(local, cam, true)
	back := ps.ResolveRealWorldPosition(world, cam, false)
	if back.Sub(local).Length() > 1e-9 {
		t.Errorf("position round trip = %+v, want %+v", back, local)
	}
}

func TestResolveRealWorldRotationInverse(t *testing.T) {
	ps := NewPrecisionSpace()
	camRot := common.QuatFromAxisAngle(common.Vec3{Z: 1}, 1.3)
	r := common.QuatFromAxisAngle(common.Vec3{X: 1}, 0.4)

	world := ps.ResolveRealWorldRotation(r, camRot, true)
	back := ps.ResolveRealWorldRotation(world, camRot, false)
	if back.AngleTo(r) > 1e-12 {
		t.Errorf("rotation round trip drifted by %v radians", back.AngleTo(r))
	}
}
