package precision

import "github.com/gamazama/GMT-fractals-sub005/common"

// Pose is a camera pose in local (near-origin) space: a position plus an
// orientation quaternion. Local positions stay small because the world offset
// absorbs all large translation.
type Pose struct {
	// Position is the camera position relative to the current world offset.
	Position common.Vec3

	// Rotation is the camera orientation.
	Rotation common.Quat
}

// CameraSnapshot is the one camera representation that round-trips exactly.
// It is the unit of undo/redo, teleport, and persisted-camera storage.
type CameraSnapshot struct {
	// LocalPosition is the camera position relative to WorldOffset.
	LocalPosition common.Vec3

	// Rotation is the camera orientation quaternion.
	Rotation common.Quat

	// WorldOffset is the split world offset active when the snapshot was taken.
	WorldOffset DoubleFloat3

	// LastMeasuredDistance is the most recent valid probe distance, used to
	// restore camera-speed scaling on teleport.
	LastMeasuredDistance float64
}
