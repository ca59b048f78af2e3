package camera

import (
	"github.com/gamazama/GMT-fractals-sub005/common"
	"github.com/gamazama/GMT-fractals-sub005/engine/precision"
)

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithPose sets the initial local pose.
//
// Parameters:
//   - p: the initial pose
//
// Returns:
//   - CameraBuilderOption: the option to apply
func WithPose(p precision.Pose) CameraBuilderOption {
	return func(c *cameraImpl) {
		p.Rotation = p.Rotation.Normalized()
		c.pose = p
	}
}

// WithPosition sets the initial local position.
//
// Parameters:
//   - p: the initial position
//
// Returns:
//   - CameraBuilderOption: the option to apply
func WithPosition(p common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pose.Position = p
	}
}

// WithFov sets the vertical field of view in radians. Defaults to 1.2.
//
// Parameters:
//   - fov: the field of view
//
// Returns:
//   - CameraBuilderOption: the option to apply
func WithFov(fov float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = common.Clamp(fov, 0.05, 3.0)
	}
}
