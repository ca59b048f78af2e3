package camera

import (
	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
)

// Mode identifies the active navigation mode.
type Mode int

const (
	// ModeFly is free-flight navigation: mouse-look plus axis movement routed
	// into the world offset so the local position stays at the origin.
	ModeFly Mode = iota

	// ModeOrbit pivots the camera around a focus point at a fixed radius.
	ModeOrbit
)

// String returns the mode name.
//
// Returns:
//   - string: "fly" or "orbit"
func (m Mode) String() string {
	if m == ModeOrbit {
		return "orbit"
	}
	return "fly"
}

// CameraController translates input deltas into camera pose updates. Movement
// speed scales with the most recent trusted surface distance so navigation
// stays usable across twenty orders of magnitude of zoom.
type CameraController interface {
	// Mode returns the active navigation mode.
	//
	// Returns:
	//   - Mode: the current mode
	Mode() Mode

	// SetMode switches navigation modes. The camera's local position is folded
	// into the world offset first so the switch leaves no residual local
	// offset, and entering orbit mode places the pivot one target distance
	// ahead of the camera.
	//
	// Parameters:
	//   - mode: the mode to switch to
	//   - space: the precision space absorbing the local position
	SetMode(mode Mode, space precision.PrecisionSpace)

	// Look applies a mouse-look delta. In fly mode it turns the camera in
	// place; in orbit mode it revolves the camera around the pivot.
	//
	// Parameters:
	//   - yawDelta: horizontal rotation in radians, positive turns right
	//   - pitchDelta: vertical rotation in radians, positive looks up
	Look(yawDelta, pitchDelta float64)

	// Move applies fly-mode axis input for one frame. The world delta is
	// routed into the precision space's offset; the camera's local position
	// does not change. Orbit mode ignores axis movement.
	//
	// Parameters:
	//   - forward, rightward, upward: axis input in [-1, 1]
	//   - dt: frame delta time in seconds
	//   - space: the precision space receiving the drift
	Move(forward, rightward, upward, dt float64, space precision.PrecisionSpace)

	// Zoom changes the orbit radius (orbit mode) or dollies along the view
	// direction (fly mode), scaled by the target distance.
	//
	// Parameters:
	//   - delta: scroll delta, positive moves closer
	//   - space: the precision space receiving fly-mode dolly drift
	Zoom(delta float64, space precision.PrecisionSpace)

	// SetMeasuredDistance feeds one probe measurement into the speed-scaling
	// average. Values outside the trusted range, NaN, or infinities are
	// discarded; the previous average survives.
	//
	// Parameters:
	//   - d: the measured surface distance
	SetMeasuredDistance(d float64)

	// TargetDistance returns the averaged trusted surface distance used for
	// speed scaling, or the default when nothing valid was ever measured.
	//
	// Returns:
	//   - float64: the smoothed distance
	TargetDistance() float64

	// SetTargetDistance overwrites the smoothed distance directly, bypassing
	// the average. Used when restoring a snapshot.
	//
	// Parameters:
	//   - d: the distance to install; untrusted values reset to the default
	SetTargetDistance(d float64)

	// Speed returns the current movement speed in world units per second.
	//
	// Returns:
	//   - float64: the distance-scaled speed
	Speed() float64

	// Pivot returns the orbit focus point in offset-local space.
	//
	// Returns:
	//   - common.Vec3: the pivot
	Pivot() common.Vec3

	// SyncFromCamera re-derives the controller's yaw/pitch state from the
	// camera's current rotation. Called after a teleport or snapshot restore
	// installs a pose the controller did not produce.
	SyncFromCamera()
}

var _ CameraController = &cameraControllerImpl{}
