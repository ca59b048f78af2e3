package camera

import (
	"math"
	"testing"

	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
)

func vecClose(a, b common.Vec3, eps float64) bool {
	return a.Sub(b).Length() <= eps
}

func TestBasisAtIdentity(t *testing.T) {
	c := NewCamera()
	right, up, forward := c.Basis()
	if !vecClose(right, common.Vec3{X: 1}, 1e-12) {
		t.Errorf("right = %+v, want +X", right)
	}
	if !vecClose(up, common.Vec3{Y: 1}, 1e-12) {
		t.Errorf("up = %+v, want +Y", up)
	}
	if !vecClose(forward, common.Vec3{Z: 1}, 1e-12) {
		t.Errorf("forward = %+v, want +Z", forward)
	}
}

func TestLookYawTurnsRight(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam)
	ctrl.Look(math.Pi/2, 0)
	_, _, forward := cam.Basis()
	if !vecClose(forward, common.Vec3{X: 1}, 1e-9) {
		t.Errorf("forward after 90 degree yaw = %+v, want +X", forward)
	}
}

func TestLookPitchClamped(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam)
	ctrl.Look(0, 10)
	_, _, forward := cam.Basis()
	if forward.Y >= 1 {
		t.Error("pitch should clamp short of the pole")
	}
	if forward.Y < 0.99 {
		t.Errorf("forward.Y = %v, want close to straight up", forward.Y)
	}
}

func TestFlyMoveRoutesIntoOffset(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam)
	space := precision.NewPrecisionSpace()

	// Default distance 3.5 at base speed 1 for one second straight ahead.
	ctrl.Move(1, 0, 0, 1.0, space)

	if got := cam.Position(); got != (common.Vec3{}) {
		t.Errorf("local position moved to %+v, want origin", got)
	}
	off := space.Offset().Value()
	if math.Abs(off.Z-3.5) > 1e-9 || math.Abs(off.X) > 1e-9 {
		t.Errorf("offset = %+v, want 3.5 along +Z", off)
	}
}

func TestSpeedScalesWithMeasuredDistance(t *testing.T) {
	ctrl := NewCameraController(NewCamera())
	if ctrl.Speed() != defaultTargetDistance {
		t.Fatalf("seed speed = %v, want %v", ctrl.Speed(), defaultTargetDistance)
	}

	ctrl.SetMeasuredDistance(0.01)
	if ctrl.TargetDistance() != 0.01 {
		t.Errorf("first trusted measurement should replace the seed, got %v", ctrl.TargetDistance())
	}
	ctrl.SetMeasuredDistance(0.02)
	want := 0.01*(1-distanceBlend) + 0.02*distanceBlend
	if math.Abs(ctrl.TargetDistance()-want) > 1e-12 {
		t.Errorf("blended distance = %v, want %v", ctrl.TargetDistance(), want)
	}
}

func TestMeasuredDistanceRejectsUntrustedValues(t *testing.T) {
	ctrl := NewCameraController(NewCamera())
	ctrl.SetMeasuredDistance(1.0)

	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, 1e-8, 1000, 5000, -2} {
		ctrl.SetMeasuredDistance(d)
	}
	if ctrl.TargetDistance() != 1.0 {
		t.Errorf("distance = %v after junk measurements, want untouched 1.0", ctrl.TargetDistance())
	}
}

func TestSetTargetDistanceFallsBackOnUntrusted(t *testing.T) {
	ctrl := NewCameraController(NewCamera())
	ctrl.SetTargetDistance(7)
	if ctrl.TargetDistance() != 7 {
		t.Fatalf("distance = %v, want 7", ctrl.TargetDistance())
	}
	ctrl.SetTargetDistance(math.Inf(1))
	if ctrl.TargetDistance() != defaultTargetDistance {
		t.Errorf("untrusted install should reset to %v, got %v", defaultTargetDistance, ctrl.TargetDistance())
	}
}

func TestModeSwitchAbsorbsLocalPosition(t *testing.T) {
	cam := NewCamera(WithPosition(common.Vec3{X: 2, Y: -1, Z: 0.5}))
	ctrl := NewCameraController(cam)
	space := precision.NewPrecisionSpace(precision.WithInitialOffset(common.Vec3{X: 10}))

	ctrl.SetMode(ModeOrbit, space)

	off := space.Offset().Value()
	if !vecClose(off, common.Vec3{X: 12, Y: -1, Z: 0.5}, 1e-9) {
		t.Errorf("offset = %+v, want the local position folded in", off)
	}
	if !vecClose(cam.Position(), common.Vec3{}, 1e-9) {
		t.Errorf("local position = %+v, want origin after absorb", cam.Position())
	}
}

func TestOrbitLookKeepsPivotDistanceAndAim(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam)
	space := precision.NewPrecisionSpace()
	ctrl.SetMode(ModeOrbit, space)

	pivot := ctrl.Pivot()
	r0 := cam.Position().Sub(pivot).Length()

	for _, step := range []float64{0.3, -0.7, 1.1} {
		ctrl.Look(step, step/2)
		r := cam.Position().Sub(pivot).Length()
		if math.Abs(r-r0) > 1e-9 {
			t.Fatalf("orbit radius drifted: %v -> %v", r0, r)
		}
		_, _, forward := cam.Basis()
		aim := pivot.Sub(cam.Position()).Normalized()
		if !vecClose(forward, aim, 1e-9) {
			t.Fatalf("camera not looking at pivot: forward %+v, want %+v", forward, aim)
		}
	}
}

func TestOrbitZoomChangesRadius(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam)
	space := precision.NewPrecisionSpace()
	ctrl.SetMode(ModeOrbit, space)

	pivot := ctrl.Pivot()
	before := cam.Position().Sub(pivot).Length()
	ctrl.Zoom(1, space)
	after := cam.Position().Sub(pivot).Length()
	if after >= before {
		t.Errorf("positive zoom should close in: %v -> %v", before, after)
	}
}

func TestOrbitIgnoresAxisMovement(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam)
	space := precision.NewPrecisionSpace()
	ctrl.SetMode(ModeOrbit, space)

	before := space.Offset().Value()
	ctrl.Move(1, 1, 1, 0.5, space)
	if space.Offset().Value() != before {
		t.Error("axis movement should be a no-op in orbit mode")
	}
}

func TestSyncFromCameraRecoversYawPitch(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(cam)

	installed := common.QuatFromAxisAngle(common.Vec3{Y: 1}, 0.9).
		Mul(common.QuatFromAxisAngle(common.Vec3{X: 1}, -0.4))
	cam.SetRotation(installed)
	ctrl.SyncFromCamera()

	// A zero-delta look re-applies the derived yaw/pitch; the aim must match.
	_, _, wantForward := cam.Basis()
	ctrl.Look(0, 0)
	_, _, gotForward := cam.Basis()
	if !vecClose(gotForward, wantForward, 1e-9) {
		t.Errorf("forward after resync = %+v, want %+v", gotForward, wantForward)
	}
}
